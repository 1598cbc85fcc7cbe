package routes

import (
	"github.com/gin-gonic/gin"
	contactControllers "github.com/jyush98/jason-co-ecom/controllers/contact"
	customOrderControllers "github.com/jyush98/jason-co-ecom/controllers/customorder"
	productControllers "github.com/jyush98/jason-co-ecom/controllers/product"
)

// SetupPublicRoutes registers the catalog and custom-order intake, both open
// to anonymous visitors.
func SetupPublicRoutes(r *gin.Engine, deps Deps) {
	products := r.Group("/products")
	{
		products.GET("", productControllers.ListProductsHandler(deps.DB))
		products.GET("/:id", productControllers.GetProductHandler(deps.DB))
	}

	r.GET("/categories", productControllers.ListCategoriesHandler(deps.DB))
	r.GET("/collections", productControllers.ListCollectionsHandler(deps.DB))
	r.GET("/collections/:id", productControllers.GetCollectionHandler(deps.DB))

	custom := r.Group("/custom-orders")
	{
		custom.POST("/drafts", customOrderControllers.SaveDraftHandler(deps.DB))
		custom.POST("", customOrderControllers.SubmitHandler(deps.DB, deps.Mailer, deps.Cfg.SupportEmail, deps.Log))
		custom.POST("/:id/images", customOrderControllers.UploadImageHandler(deps.DB, deps.Cfg.UploadDir, deps.Cfg.PublicURL))
	}

	contact := r.Group("/contact")
	{
		contact.POST("/inquiry", contactControllers.SubmitInquiryHandler(deps.DB, deps.Mailer, deps.Cfg.SupportEmail, deps.Log))
		contact.POST("/consultation", contactControllers.BookConsultationHandler(deps.DB, deps.Mailer, deps.Cfg.SupportEmail, deps.Log))
	}
}
