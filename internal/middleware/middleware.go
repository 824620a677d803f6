package middleware

import (
	"time"

	"github.com/valyala/fasthttp"
	"github.com/zerodha/fastglue"
	"github.com/zerodha/logf"
)

// RequestLogger logs incoming requests
func RequestLogger(log logf.Logger) fastglue.FastMiddleware {
	return func(r *fastglue.Request) *fastglue.Request {
		start := time.Now()

		// Store start time for later use
		r.RequestCtx.SetUserValue("request_start", start)

		log.Debug("Request received",
			"method", string(r.RequestCtx.Method()),
			"path", string(r.RequestCtx.Path()))

		return r
	}
}

// CORS handles Cross-Origin Resource Sharing for the support
// dashboard. Only the configured dashboard origin is allowed.
func CORS(dashboardOrigin string) fastglue.FastMiddleware {
	return func(r *fastglue.Request) *fastglue.Request {
		r.RequestCtx.Response.Header.Set("Access-Control-Allow-Origin", dashboardOrigin)
		r.RequestCtx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		r.RequestCtx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, X-Webhook-Secret, X-Requested-With")
		r.RequestCtx.Response.Header.Set("Access-Control-Allow-Credentials", "true")
		r.RequestCtx.Response.Header.Set("Access-Control-Max-Age", "86400")

		return r
	}
}

// Recovery recovers from panics
func Recovery(log logf.Logger) fastglue.FastMiddleware {
	return func(r *fastglue.Request) *fastglue.Request {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered", "error", err, "path", string(r.RequestCtx.Path()))
				r.RequestCtx.SetStatusCode(fasthttp.StatusInternalServerError)
				r.RequestCtx.SetBodyString(`{"status":"error","message":"Internal server error"}`)
			}
		}()
		return r
	}
}
