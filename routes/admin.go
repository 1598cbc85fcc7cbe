package routes

import (
	"github.com/gin-gonic/gin"
	adminControllers "github.com/jyush98/jason-co-ecom/controllers/admin"
	contactControllers "github.com/jyush98/jason-co-ecom/controllers/contact"
	customOrderControllers "github.com/jyush98/jason-co-ecom/controllers/customorder"
	orderControllers "github.com/jyush98/jason-co-ecom/controllers/order"
	productControllers "github.com/jyush98/jason-co-ecom/controllers/product"
	"github.com/jyush98/jason-co-ecom/middleware"
)

// SetupAdminRoutes registers the API-key-protected back office: catalog
// management, order fulfillment, analytics and the live order feed.
func SetupAdminRoutes(r *gin.Engine, deps Deps) {
	admin := r.Group("/admin")
	admin.Use(middleware.ValidateAPIKey(deps.Cfg.AdminAPIKey))
	{
		products := admin.Group("/products")
		{
			products.POST("", productControllers.CreateProductHandler(deps.DB))
			products.PUT("/:id", productControllers.UpdateProductHandler(deps.DB))
			products.DELETE("/:id", productControllers.DeleteProductHandler(deps.DB))
		}
		admin.POST("/categories", productControllers.CreateCategoryHandler(deps.DB))

		orders := admin.Group("/orders")
		{
			orders.GET("", adminControllers.SearchOrdersHandler(deps.DB))
			orders.GET("/export", adminControllers.ExportOrdersToExcel(deps.DB))
			orders.GET("/:id", orderControllers.GetOrderHandler(deps.DB))
			orders.PUT("/:id/status", orderControllers.UpdateOrderStatusHandler(deps.DB, deps.Queue, deps.Log))
			orders.POST("/:id/refund", orderControllers.RefundOrderHandler(deps.DB))
		}
		admin.GET("/orders-feed", orderControllers.OrderFeedHandler)

		admin.GET("/dashboard", adminControllers.DashboardHandler(deps.DB))

		inquiries := admin.Group("/inquiries")
		{
			inquiries.GET("", contactControllers.ListInquiriesHandler(deps.DB))
			inquiries.PUT("/:id/status", contactControllers.UpdateInquiryStatusHandler(deps.DB))
		}

		custom := admin.Group("/custom-orders")
		{
			custom.GET("", customOrderControllers.ListHandler(deps.DB))
			custom.GET("/:id", customOrderControllers.GetHandler(deps.DB))
			custom.PUT("/:id/status", customOrderControllers.UpdateStatusHandler(deps.DB))
			custom.POST("/:id/milestones", customOrderControllers.AddMilestoneHandler(deps.DB))
		}
	}
}
