package orderControllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/models"
	"github.com/jyush98/jason-co-ecom/notifications"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TransitionRequest struct {
	Status         string  `json:"status" binding:"required"`
	TrackingNumber *string `json:"tracking_number"`
	Reason         string  `json:"reason"`
	ChangedBy      string  `json:"changed_by"`
}

// TransitionOrder applies one legal status change: it validates against the
// transition table, stamps shipped_at/delivered_at, appends the audit row and,
// after commit, publishes the matching customer notification.
func TransitionOrder(
	ctx context.Context,
	db *gorm.DB,
	queue notifications.Queue,
	log *zap.Logger,
	orderID uint,
	to models.OrderStatus,
	req TransitionRequest,
) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Items").First(&order, orderID).Error; err != nil {
		return nil, err
	}

	from := order.Status
	if !models.CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, from, to)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{"status": to}
	switch to {
	case models.OrderStatusShipped:
		updates["shipped_at"] = now
		if req.TrackingNumber != nil {
			updates["tracking_number"] = *req.TrackingNumber
		}
	case models.OrderStatusDelivered:
		updates["delivered_at"] = now
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  req.ChangedBy,
			Reason:     req.Reason,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	order.Status = to
	switch to {
	case models.OrderStatusShipped:
		order.ShippedAt = &now
		if req.TrackingNumber != nil {
			order.TrackingNumber = req.TrackingNumber
		}
	case models.OrderStatusDelivered:
		order.DeliveredAt = &now
	}

	publishStatusEvent(ctx, queue, log, &order, to)
	BroadcastOrderEvent("order_status_changed", &order)

	return &order, nil
}

// publishStatusEvent maps the new status to the right notification type.
// Publish failures never roll back the transition.
func publishStatusEvent(ctx context.Context, queue notifications.Queue, log *zap.Logger, order *models.Order, to models.OrderStatus) {
	if order.UserID == nil {
		return
	}

	var t notifications.Type
	switch to {
	case models.OrderStatusShipped:
		t = notifications.TypeShippingNotification
	case models.OrderStatusDelivered:
		t = notifications.TypeDeliveryConfirmation
	default:
		t = notifications.TypeOrderUpdate
	}

	evt := notifications.Event{
		Type:    t,
		UserID:  *order.UserID,
		OrderID: order.ID,
		Data:    map[string]interface{}{"new_status": string(to)},
	}
	if err := queue.Publish(ctx, evt); err != nil {
		log.Error("failed to publish order status event",
			zap.String("order_number", order.OrderNumber),
			zap.String("status", string(to)),
			zap.Error(err),
		)
	}
}

// MarkPaymentRefunded flips a completed payment to refunded. Other payment
// moves happen inside checkout and the webhook, never here.
func MarkPaymentRefunded(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		return nil, err
	}
	if !models.CanTransitionPayment(order.PaymentStatus, models.PaymentStatusRefunded) {
		return nil, fmt.Errorf("%w: payment %s -> %s", models.ErrInvalidTransition, order.PaymentStatus, models.PaymentStatusRefunded)
	}
	if err := db.Model(&order).Update("payment_status", models.PaymentStatusRefunded).Error; err != nil {
		return nil, err
	}
	order.PaymentStatus = models.PaymentStatusRefunded
	return &order, nil
}

// UpdateOrderStatusHandler is the admin endpoint for moving an order through
// its lifecycle.
func UpdateOrderStatusHandler(db *gorm.DB, queue notifications.Queue, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}

		var req TransitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		to, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := TransitionOrder(c.Request.Context(), db, queue, log, orderID, to, req)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, models.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case err != nil:
			log.Error("status transition failed", zap.Uint("order_id", orderID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		default:
			c.JSON(http.StatusOK, order)
		}
	}
}

// RefundOrderHandler marks an order's payment as refunded.
func RefundOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}

		order, err := MarkPaymentRefunded(db, orderID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, models.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refund order"})
		default:
			c.JSON(http.StatusOK, order)
		}
	}
}

// GetOrderHandler is the admin view of a single order, history included.
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}

		var order models.Order
		if err := db.Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}

		var history []models.OrderStatusHistory
		if err := db.Where("order_id = ?", order.ID).Order("created_at ASC").Find(&history).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order history"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order, "history": history})
	}
}

func orderIDParam(c *gin.Context) (uint, bool) {
	var id uint
	if _, err := fmt.Sscanf(c.Param("id"), "%d", &id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return 0, false
	}
	return id, true
}
