package cartControllers

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

type addToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// AddToCartHandler adds a product to the caller's cart, or bumps the quantity
// when the product is already in it.
func AddToCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Quantity <= 0 {
			req.Quantity = 1
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
		if !product.Purchasable(req.Quantity) {
			c.JSON(http.StatusConflict, gin.H{"error": "Product is not available in the requested quantity"})
			return
		}

		item := models.CartItem{UserID: user.ID, ProductID: req.ProductID, Quantity: req.Quantity}
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"quantity": gorm.Expr("quantity + ?", req.Quantity)}),
		}).Create(&item).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Added to cart"})
	}
}

type updateCartRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// UpdateCartItemHandler sets the quantity of a cart line. Quantities below
// one are rejected; removal has its own endpoint.
func UpdateCartItemHandler(db *gorm.DB) gin.HandlerFunc {
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

		var req updateCartRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be at least 1"})
			return
		}

		var item models.CartItem
		err = db.Preload("Product").
			Where("user_id = ? AND product_id = ?", user.ID, productID).
			First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart item"})
			return
		}
		if !item.Product.Purchasable(req.Quantity) {
			c.JSON(http.StatusConflict, gin.H{"error": "Product is not available in the requested quantity"})
			return
		}

		if err := db.Model(&item).Update("quantity", req.Quantity).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Cart updated"})
	}
}

// RemoveFromCartHandler deletes one product line from the cart.
func RemoveFromCartHandler(db *gorm.DB) gin.HandlerFunc {
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

		res := db.Where("user_id = ? AND product_id = ?", user.ID, productID).Delete(&models.CartItem{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Removed from cart"})
	}
}

// ClearCartHandler empties the caller's cart.
func ClearCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		if err := db.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GetCartHandler returns the cart lines with a priced summary so the client
// never has to do money math.
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		var items []models.CartItem
		if err := db.Preload("Product").Where("user_id = ?", user.ID).Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		var subtotal int64
		var count int
		for _, item := range items {
			subtotal += item.Product.PriceCents * int64(item.Quantity)
			count += item.Quantity
		}

		c.JSON(http.StatusOK, gin.H{
			"items":          items,
			"item_count":     count,
			"subtotal_cents": subtotal,
		})
	}
}
