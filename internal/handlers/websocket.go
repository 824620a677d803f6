package handlers

import (
	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"
	ws "github.com/vertexaitech/supportbot/internal/websocket"
	"github.com/zerodha/fastglue"
)

var upgrader = websocket.FastHTTPUpgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard origin is enforced by the CORS middleware; the
	// websocket handshake accepts any origin.
	CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
		return true
	},
}

// WebSocketHandler upgrades the connection and attaches the client to
// the hub. The client starts watching all conversations until it sends
// a set_phone message.
func (a *App) WebSocketHandler(r *fastglue.Request) error {
	err := upgrader.Upgrade(r.RequestCtx, func(conn *websocket.Conn) {
		client := ws.NewClient(a.WSHub, conn)
		a.WSHub.Register(client)

		go client.WritePump()
		client.ReadPump()
	})
	if err != nil {
		a.Log.Error("WebSocket upgrade failed", "error", err)
		return r.SendErrorEnvelope(fasthttp.StatusBadRequest, "WebSocket upgrade failed", nil, "")
	}
	return nil
}
