// Package handlers contains all HTTP handlers. Handlers hang off App,
// which carries the shared dependencies.
package handlers

import (
	"github.com/redis/go-redis/v9"
	"github.com/vertexaitech/supportbot/internal/config"
	"github.com/vertexaitech/supportbot/internal/engine"
	"github.com/vertexaitech/supportbot/internal/notify"
	"github.com/vertexaitech/supportbot/internal/store"
	"github.com/vertexaitech/supportbot/internal/websocket"
	"github.com/vertexaitech/supportbot/pkg/groq"
	"github.com/vertexaitech/supportbot/pkg/whatssms"
	"github.com/zerodha/logf"
	"gorm.io/gorm"
)

// App holds the wired application dependencies.
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Log      logf.Logger
	Gateway  *whatssms.Client
	Groq     *groq.Client
	Store    store.ConversationStore
	Engine   *engine.Engine
	Notifier *notify.Notifier
	WSHub    *websocket.Hub
}
