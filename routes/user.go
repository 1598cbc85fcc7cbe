package routes

import (
	"github.com/gin-gonic/gin"
	accountControllers "github.com/jyush98/jason-co-ecom/controllers/account"
	cartControllers "github.com/jyush98/jason-co-ecom/controllers/cart"
	paymentControllers "github.com/jyush98/jason-co-ecom/controllers/payment"
	wishlistControllers "github.com/jyush98/jason-co-ecom/controllers/wishlist"
	"github.com/jyush98/jason-co-ecom/middleware"
)

// SetupUserRoutes registers the authenticated customer surface: profile,
// cart, checkout, orders, wishlist and notification preferences.
func SetupUserRoutes(r *gin.Engine, deps Deps) {
	pricing := paymentControllers.Pricing{
		TaxRateBps:            deps.Cfg.TaxRateBps,
		FlatShippingCents:     deps.Cfg.FlatShippingCents,
		FreeShippingThreshold: deps.Cfg.FreeShippingThreshold,
	}

	user := r.Group("/user")
	user.Use(middleware.ValidateToken(deps.Cfg.JWTSecret))
	{
		user.GET("/profile", accountControllers.GetProfileHandler(deps.DB))
		user.PUT("/profile", accountControllers.UpdateProfileHandler(deps.DB, deps.Queue, deps.Log))

		cart := user.Group("/cart")
		{
			cart.GET("", cartControllers.GetCartHandler(deps.DB))
			cart.POST("", cartControllers.AddToCartHandler(deps.DB))
			cart.PUT("/:productId", cartControllers.UpdateCartItemHandler(deps.DB))
			cart.DELETE("/:productId", cartControllers.RemoveFromCartHandler(deps.DB))
			cart.DELETE("", cartControllers.ClearCartHandler(deps.DB))
		}

		checkout := user.Group("/checkout")
		{
			checkout.POST("/intent", paymentControllers.CreateIntentHandler(deps.DB, deps.Gateway, pricing))
			checkout.POST("/submit", paymentControllers.SubmitOrderHandler(deps.DB, deps.Gateway, deps.Queue, deps.Log, pricing))
		}

		orders := user.Group("/orders")
		{
			orders.GET("", paymentControllers.ListOrdersHandler(deps.DB))
			orders.GET("/:orderNumber", paymentControllers.GetOrderHandler(deps.DB))
		}

		wishlist := user.Group("/wishlist")
		{
			wishlist.GET("", wishlistControllers.ListWishlistHandler(deps.DB))
			wishlist.POST("", wishlistControllers.AddToWishlistHandler(deps.DB))
			wishlist.DELETE("/:productId", wishlistControllers.RemoveFromWishlistHandler(deps.DB))
		}

		addresses := user.Group("/addresses")
		{
			addresses.GET("", accountControllers.ListAddressesHandler(deps.DB))
			addresses.POST("", accountControllers.CreateAddressHandler(deps.DB))
			addresses.PUT("/:id", accountControllers.UpdateAddressHandler(deps.DB))
			addresses.POST("/:id/default", accountControllers.SetDefaultAddressHandler(deps.DB))
			addresses.DELETE("/:id", accountControllers.DeleteAddressHandler(deps.DB))
		}

		settings := user.Group("/settings")
		{
			settings.GET("", accountControllers.GetSettingsHandler(deps.DB))
			settings.PUT("", accountControllers.UpdateSettingsHandler(deps.DB))
			settings.POST("/reset", accountControllers.ResetSettingsHandler(deps.DB))
		}

		prefs := user.Group("/notification-preferences")
		{
			prefs.GET("", accountControllers.GetPreferencesHandler(deps.DB))
			prefs.PUT("", accountControllers.UpdatePreferencesHandler(deps.DB))
			prefs.POST("/reset", accountControllers.ResetPreferencesHandler(deps.DB))
			prefs.PATCH("/toggle", accountControllers.TogglePreferenceHandler(deps.DB))
		}
	}
}
