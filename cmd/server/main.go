package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/vertexaitech/supportbot/internal/classifier"
	"github.com/vertexaitech/supportbot/internal/config"
	"github.com/vertexaitech/supportbot/internal/database"
	"github.com/vertexaitech/supportbot/internal/engine"
	"github.com/vertexaitech/supportbot/internal/handlers"
	"github.com/vertexaitech/supportbot/internal/middleware"
	"github.com/vertexaitech/supportbot/internal/notify"
	"github.com/vertexaitech/supportbot/internal/store"
	"github.com/vertexaitech/supportbot/internal/websocket"
	"github.com/vertexaitech/supportbot/pkg/groq"
	"github.com/vertexaitech/supportbot/pkg/whatssms"
	"github.com/zerodha/fastglue"
	"github.com/zerodha/logf"
)

var (
	configPath = flag.String("config", "config.toml", "Path to config file")
	migrate    = flag.Bool("migrate", false, "Run database migrations")
)

func main() {
	flag.Parse()

	// Initialize logger
	lo := logf.New(logf.Opts{
		EnableColor:     true,
		Level:           logf.DebugLevel,
		EnableCaller:    true,
		TimestampFormat: "2006-01-02 15:04:05",
		DefaultFields:   []any{"app", "supportbot"},
	})

	lo.Info("Starting Supportbot server...")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		lo.Fatal("Failed to load config", "error", err)
	}

	// Set log level based on environment
	if cfg.App.Environment == "production" {
		lo = logf.New(logf.Opts{
			Level:           logf.InfoLevel,
			TimestampFormat: "2006-01-02 15:04:05",
			DefaultFields:   []any{"app", "supportbot"},
		})
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgres(&cfg.Database, cfg.App.Debug)
	if err != nil {
		lo.Fatal("Failed to connect to database", "error", err)
	}
	lo.Info("Connected to PostgreSQL")

	// Run migrations if requested
	if *migrate {
		if err := database.AutoMigrate(db); err != nil {
			lo.Fatal("Migration failed", "error", err)
		}
		if err := database.CreateIndexes(db); err != nil {
			lo.Fatal("Index creation failed", "error", err)
		}
		lo.Info("Migrations complete")
	}

	// Connect to Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		lo.Fatal("Failed to connect to Redis", "error", err)
	}
	lo.Info("Connected to Redis")

	// Initialize Fastglue
	g := fastglue.NewGlue()

	// Initialize the message gateway client
	gateway := whatssms.New(lo, whatssms.Opts{
		BaseURL:   cfg.Gateway.APIURL,
		Secret:    cfg.Gateway.Secret,
		AccountID: cfg.Gateway.AccountID,
	})

	// Initialize the Groq completion client
	groqClient := groq.New(lo, groq.Opts{
		APIKey:   cfg.Groq.APIKey,
		Endpoint: cfg.Groq.APIURL,
		Model:    cfg.Groq.Model,
	})

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(lo)
	go wsHub.Run()
	lo.Info("WebSocket hub started")

	// Wire the conversation engine
	convStore := store.New(db)
	notifier := notify.New(gateway, db, lo, cfg.Gateway.TeamNumber)
	eng := engine.New(engine.Opts{
		Store:        convStore,
		Classifier:   classifier.New(),
		Completer:    groqClient,
		Sender:       gateway,
		Team:         notifier,
		Events:       wsHub,
		Log:          lo,
		MessageLimit: cfg.Bot.MessageLimit,
	})

	// Initialize app with dependencies
	app := &handlers.App{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Log:      lo,
		Gateway:  gateway,
		Groq:     groqClient,
		Store:    convStore,
		Engine:   eng,
		Notifier: notifier,
		WSHub:    wsHub,
	}

	// Setup middleware
	g.Before(middleware.RequestLogger(lo))
	g.Before(middleware.CORS(cfg.Server.DashboardOrigin))
	g.Before(middleware.Recovery(lo))

	// Setup routes
	setupRoutes(g, app)

	// Create server
	server := &fasthttp.Server{
		Handler:      g.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		Name:         "Supportbot",
	}

	// Start server in goroutine
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		lo.Info("Server listening", "address", addr)
		if err := server.ListenAndServe(addr); err != nil {
			lo.Fatal("Server failed", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lo.Info("Shutting down server...")
	if err := server.Shutdown(); err != nil {
		lo.Error("Server shutdown error", "error", err)
	}
	lo.Info("Server stopped")
}

func setupRoutes(g *fastglue.Fastglue, app *handlers.App) {
	// Service banner and health
	g.GET("/", app.Root)
	g.GET("/health", app.HealthCheck)
	g.GET("/ready", app.ReadyCheck)

	// Gateway webhook (public - for WhatsSMS.io)
	g.GET("/webhook", app.WebhookVerify)
	g.POST("/webhook", app.WebhookHandler)

	// Website endpoints
	g.POST("/api/chat", app.Chat)
	g.POST("/api/leads", app.CreateLead)
	g.POST("/api/support-tickets", app.CreateSupportTicket)

	// Bot operations (dashboard)
	g.GET("/api/bot/conversations/{phone}", app.GetConversation)
	g.POST("/api/bot/send", app.SendMessage)
	g.POST("/api/bot/notify-team", app.NotifyTeam)
	g.POST("/api/bot/test", app.TestBot)

	// WebSocket for live conversation updates
	g.GET("/ws", app.WebSocketHandler)
}
