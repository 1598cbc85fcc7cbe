package paymentControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/auth"
	"github.com/jyush98/jason-co-ecom/models"
	"github.com/jyush98/jason-co-ecom/notifications"
	"github.com/jyush98/jason-co-ecom/payments"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateIntentHandler prices the caller's cart and opens a payment intent for
// that amount. The client-side amount is never consulted.
func CreateIntentHandler(db *gorm.DB, gw payments.Gateway, pricing Pricing) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		var req struct {
			Currency       string         `json:"currency"`
			ShippingMethod ShippingMethod `json:"shipping_method"`
		}
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if req.Currency == "" {
			req.Currency = "USD"
		}

		var cartItems []models.CartItem
		if err := db.Preload("Product").Where("user_id = ?", user.ID).Find(&cartItems).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
			return
		}
		if len(cartItems) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}

		totals := ComputeTotals(cartItems, pricing, req.ShippingMethod)

		intent, err := gw.CreateIntent(c.Request.Context(), totals.TotalCents, req.Currency, map[string]string{
			"user_id":  strconv.FormatUint(uint64(user.ID), 10),
			"clerk_id": user.ClerkID,
		})
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create payment intent"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"client_secret":  intent.ClientSecret,
			"intent_id":      intent.ID,
			"amount_cents":   totals.TotalCents,
			"subtotal_cents": totals.SubtotalCents,
			"tax_cents":      totals.TaxCents,
			"shipping_cents": totals.ShippingCents,
			"currency":       req.Currency,
		})
	}
}

// SubmitOrderHandler finalizes checkout once the client reports the intent as
// confirmed.
func SubmitOrderHandler(db *gorm.DB, gw payments.Gateway, queue notifications.Queue, log *zap.Logger, pricing Pricing) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		var req SubmitOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := SubmitOrder(c.Request.Context(), db, gw, queue, log, pricing, user, auth.TokenEmail(c), req)
		if err != nil {
			switch {
			case errors.Is(err, ErrEmptyCart):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			case errors.Is(err, ErrPaymentNotConfirmed):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, ErrAddressNotFound), errors.Is(err, ErrNoShippingAddress):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, ErrInsufficientStock):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				log.Error("order submission failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
			}
			return
		}

		status := http.StatusCreated
		if !result.Created {
			status = http.StatusOK
		}
		c.JSON(status, gin.H{
			"order_number":           result.Order.OrderNumber,
			"order_id":               result.Order.ID,
			"total_cents":            result.Order.TotalCents,
			"status":                 result.Order.Status,
			"confirmation_scheduled": result.NotificationScheduled,
		})
	}
}

// GetOrderHandler returns one of the caller's orders by order number.
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		var order models.Order
		err = db.Preload("Items").Where("order_number = ?", c.Param("orderNumber")).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}

		if order.UserID == nil || *order.UserID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your order"})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// ListOrdersHandler returns the caller's orders, newest first.
func ListOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		var orders []models.Order
		if err := db.Preload("Items").
			Where("user_id = ?", user.ID).
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
	}
}
