package productControllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/models"
	"gorm.io/gorm"
)

// ListProductsHandler is the public catalog listing. Only active products are
// visible; draft and discontinued items never leave the admin surface.
func ListProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.Product{}).Where("status = ?", models.ProductStatusActive)

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
		}
		if categoryID := c.Query("category_id"); categoryID != "" {
			query = query.Where("category_id = ?", categoryID)
		}
		if c.Query("featured") == "true" {
			query = query.Where("featured = ?", true)
		}
		if min := c.Query("min_price_cents"); min != "" {
			query = query.Where("price_cents >= ?", min)
		}
		if max := c.Query("max_price_cents"); max != "" {
			query = query.Where("price_cents <= ?", max)
		}

		switch c.Query("sort") {
		case "price_asc":
			query = query.Order("price_cents ASC")
		case "price_desc":
			query = query.Order("price_cents DESC")
		case "newest":
			query = query.Order("created_at DESC")
		default:
			query = query.Order("featured DESC, created_at DESC")
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
		if pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
			return
		}

		var products []models.Product
		err := query.Preload("Category").
			Offset((page - 1) * pageSize).
			Limit(pageSize).
			Find(&products).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"products":  products,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		})
	}
}

// GetProductHandler returns one active product by id.
func GetProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		err := db.Preload("Category").Preload("Collections").
			Where("status = ?", models.ProductStatusActive).
			First(&product, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

type productRequest struct {
	Name                string  `json:"name" binding:"required"`
	Description         string  `json:"description"`
	SKU                 *string `json:"sku"`
	Slug                *string `json:"slug"`
	PriceCents          int64   `json:"price_cents" binding:"required"`
	CompareAtPriceCents *int64  `json:"compare_at_price_cents"`
	InventoryCount      int     `json:"inventory_count"`
	TrackInventory      *bool   `json:"track_inventory"`
	LowStockThreshold   *int    `json:"low_stock_threshold"`
	Status              string  `json:"status"`
	Featured            bool    `json:"featured"`
	ImageURL            *string `json:"image_url"`
	CategoryID          *uint   `json:"category_id"`
}

func (r *productRequest) status() (models.ProductStatus, bool) {
	if r.Status == "" {
		return models.ProductStatusDraft, true
	}
	switch s := models.ProductStatus(r.Status); s {
	case models.ProductStatusDraft, models.ProductStatusActive, models.ProductStatusDiscontinued:
		return s, true
	default:
		return "", false
	}
}

// CreateProductHandler is the admin create endpoint.
func CreateProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.PriceCents < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative"})
			return
		}
		status, ok := req.status()
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product status"})
			return
		}

		product := models.Product{
			Name:                req.Name,
			Description:         req.Description,
			SKU:                 req.SKU,
			Slug:                req.Slug,
			PriceCents:          req.PriceCents,
			CompareAtPriceCents: req.CompareAtPriceCents,
			InventoryCount:      req.InventoryCount,
			Status:              status,
			Featured:            req.Featured,
			ImageURL:            req.ImageURL,
			CategoryID:          req.CategoryID,
			TrackInventory:      true,
			LowStockThreshold:   5,
		}
		if req.TrackInventory != nil {
			product.TrackInventory = *req.TrackInventory
		}
		if req.LowStockThreshold != nil {
			product.LowStockThreshold = *req.LowStockThreshold
		}

		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

// UpdateProductHandler is the admin update endpoint. It replaces the mutable
// fields wholesale.
func UpdateProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.First(&product, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			return
		}

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.PriceCents < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative"})
			return
		}
		status, ok := req.status()
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product status"})
			return
		}

		product.Name = req.Name
		product.Description = req.Description
		product.SKU = req.SKU
		product.Slug = req.Slug
		product.PriceCents = req.PriceCents
		product.CompareAtPriceCents = req.CompareAtPriceCents
		product.InventoryCount = req.InventoryCount
		product.Status = status
		product.Featured = req.Featured
		product.ImageURL = req.ImageURL
		product.CategoryID = req.CategoryID
		if req.TrackInventory != nil {
			product.TrackInventory = *req.TrackInventory
		}
		if req.LowStockThreshold != nil {
			product.LowStockThreshold = *req.LowStockThreshold
		}

		if err := db.Save(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// DeleteProductHandler soft-deletes a product. Order items keep their
// snapshots, so history survives the removal.
func DeleteProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := db.Delete(&models.Product{}, c.Param("id"))
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}

// ListCategoriesHandler returns top-level categories with one level of
// children.
func ListCategoriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Preload("Children").Where("parent_id IS NULL").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories})
	}
}

type categoryRequest struct {
	Name     string  `json:"name" binding:"required"`
	Slug     *string `json:"slug"`
	ParentID *uint   `json:"parent_id"`
}

// CreateCategoryHandler is the admin category create endpoint.
func CreateCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req categoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		category := models.Category{Name: req.Name, Slug: req.Slug, ParentID: req.ParentID}
		if err := db.Create(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

// ListCollectionsHandler returns all curated collections.
func ListCollectionsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var collections []models.Collection
		if err := db.Find(&collections).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch collections"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"collections": collections})
	}
}

// GetCollectionHandler returns one collection with its active products.
func GetCollectionHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var collection models.Collection
		err := db.Preload("Products", "status = ?", models.ProductStatusActive).
			First(&collection, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch collection"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"collection": gin.H{
				"id":          collection.ID,
				"name":        collection.Name,
				"description": collection.Description,
				"products":    collection.Products,
			},
		})
	}
}
