package routes

import (
	"github.com/gin-gonic/gin"
	webhookControllers "github.com/jyush98/jason-co-ecom/controllers/webhook"
)

// SetupWebhookRoutes registers the inbound processor and identity-provider
// webhooks. Both verify their own signatures instead of using middleware.
func SetupWebhookRoutes(r *gin.Engine, deps Deps) {
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/stripe", webhookControllers.StripeWebhookHandler(deps.DB, deps.Queue, deps.Log, deps.Cfg.StripeWebhookSecret))
		webhooks.POST("/clerk", webhookControllers.ClerkWebhookHandler(deps.DB, deps.Log, deps.Cfg.ClerkWebhookSecret))
	}
}
