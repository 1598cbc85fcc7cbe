package wishlistControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/auth"
	"github.com/jyush98/jason-co-ecom/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type addWishlistRequest struct {
	ProductID       uint    `json:"product_id" binding:"required"`
	Notes           *string `json:"notes"`
	CollectionName  *string `json:"collection_name"`
	Priority        *int    `json:"priority"`
	NotifyPriceDrop bool    `json:"notify_price_drop"`
}

// AddToWishlistHandler saves a product, capturing its current price so a
// later price drop can be detected. Re-adding an existing product updates the
// notes and priority but keeps the original captured price.
func AddToWishlistHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		var req addWishlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var product models.Product
		if err := db.First(&product, req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			return
		}

		price := product.PriceCents
		item := models.WishlistItem{
			UserID:              user.ID,
			ProductID:           req.ProductID,
			Notes:               req.Notes,
			CollectionName:      req.CollectionName,
			Priority:            3,
			PriceWhenAddedCents: &price,
			NotifyPriceDrop:     req.NotifyPriceDrop,
		}
		if req.Priority != nil && *req.Priority >= 1 && *req.Priority <= 3 {
			item.Priority = *req.Priority
		}

		err = db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"notes", "collection_name", "priority", "notify_price_drop",
			}),
		}).Create(&item).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to wishlist"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Added to wishlist"})
	}
}

// RemoveFromWishlistHandler drops a product from the wishlist.
func RemoveFromWishlistHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
			return
		}

		res := db.Where("user_id = ? AND product_id = ?", user.ID, productID).Delete(&models.WishlistItem{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove from wishlist"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not in wishlist"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist"})
	}
}

// ListWishlistHandler returns the wishlist ordered by priority, flagging
// items whose price has dropped since they were added.
func ListWishlistHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		query := db.Preload("Product").Where("user_id = ?", user.ID)
		if collection := c.Query("collection"); collection != "" {
			query = query.Where("collection_name = ?", collection)
		}

		var items []models.WishlistItem
		if err := query.Order("priority ASC, created_at DESC").Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wishlist"})
			return
		}

		type wishlistEntry struct {
			models.WishlistItem
			PriceDropped bool `json:"price_dropped"`
		}
		entries := make([]wishlistEntry, 0, len(items))
		for _, item := range items {
			dropped := item.PriceWhenAddedCents != nil && item.Product.PriceCents < *item.PriceWhenAddedCents
			entries = append(entries, wishlistEntry{WishlistItem: item, PriceDropped: dropped})
		}

		c.JSON(http.StatusOK, gin.H{"items": entries, "count": len(entries)})
	}
}
