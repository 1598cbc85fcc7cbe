package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/config"
	"github.com/jyush98/jason-co-ecom/notifications"
	"github.com/jyush98/jason-co-ecom/payments"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps carries everything the route groups need so registration stays a
// plain function call from main.
type Deps struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Gateway payments.Gateway
	Mailer  notifications.Mailer
	Queue   notifications.Queue
	Log     *zap.Logger
}

// SetupRoutes is the single entry point that wires up the public, user-facing,
// admin and webhook route groups.
func SetupRoutes(r *gin.Engine, deps Deps) {
	SetupPublicRoutes(r, deps)
	SetupUserRoutes(r, deps)
	SetupAdminRoutes(r, deps)
	SetupWebhookRoutes(r, deps)
}
