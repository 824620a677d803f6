package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `koanf:"app"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Gateway  GatewayConfig  `koanf:"gateway"`
	Groq     GroqConfig     `koanf:"groq"`
	Bot      BotConfig      `koanf:"bot"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

type ServerConfig struct {
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	ReadTimeout  int    `koanf:"read_timeout"`
	WriteTimeout int    `koanf:"write_timeout"`
	// Origin of the support dashboard, used for CORS.
	DashboardOrigin string `koanf:"dashboard_origin"`
}

type DatabaseConfig struct {
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// GatewayConfig holds WhatsSMS.io API credentials and routing numbers.
type GatewayConfig struct {
	APIURL     string `koanf:"api_url"`
	Secret     string `koanf:"secret"`
	AccountID  string `koanf:"account_id"`
	BotPhone   string `koanf:"bot_phone"`
	TeamNumber string `koanf:"team_number"`
	// Secret the gateway echoes back on webhook deliveries. Verified
	// and logged, never enforced; the gateway does not sign payloads.
	WebhookSecret string `koanf:"webhook_secret"`
}

type GroqConfig struct {
	APIKey string `koanf:"api_key"`
	APIURL string `koanf:"api_url"`
	Model  string `koanf:"model"`
}

type BotConfig struct {
	// Inbound messages allowed per conversation before the bot hands
	// off to the team.
	MessageLimit int `koanf:"message_limit"`
	// TTL in minutes for webhook message-ID dedup keys in Redis.
	DedupTTLMins int `koanf:"dedup_ttl_mins"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Load from config file if provided
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, err
		}
	}

	// Load from environment variables (SUPPORTBOT_ prefix)
	// e.g., SUPPORTBOT_DATABASE_HOST -> database.host
	if err := k.Load(env.Provider("SUPPORTBOT_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "SUPPORTBOT_")), "_", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	setDefaults(&cfg)

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "Supportbot"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.DashboardOrigin == "" {
		cfg.Server.DashboardOrigin = "http://localhost:3000"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 300
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Gateway.APIURL == "" {
		cfg.Gateway.APIURL = "https://app.whatssms.io/api"
	}
	if cfg.Groq.APIURL == "" {
		cfg.Groq.APIURL = "https://api.groq.com/openai/v1/chat/completions"
	}
	if cfg.Groq.Model == "" {
		cfg.Groq.Model = "llama-3.1-8b-instant"
	}
	if cfg.Bot.MessageLimit == 0 {
		cfg.Bot.MessageLimit = 20
	}
	if cfg.Bot.DedupTTLMins == 0 {
		cfg.Bot.DedupTTLMins = 24 * 60
	}
}
