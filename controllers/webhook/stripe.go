package webhookControllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/models"
	"github.com/jyush98/jason-co-ecom/notifications"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

// StripeWebhookHandler receives processor events. Succeeded intents confirm
// the matching order's payment; failed intents mark it failed. Events for
// intents with no order yet are acknowledged and dropped, since order
// creation is driven by checkout, not the webhook.
func StripeWebhookHandler(db *gorm.DB, queue notifications.Queue, log *zap.Logger, webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
			return
		}

		if webhookSecret != "" {
			if !verifyStripeSignature(payload, c.GetHeader("Stripe-Signature"), webhookSecret) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
				return
			}
		}

		var event stripeEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
			return
		}

		intentID := event.Data.Object.ID
		switch event.Type {
		case "payment_intent.succeeded":
			if err := confirmOrderPayment(c, db, queue, log, intentID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
				return
			}
		case "payment_intent.payment_failed":
			if err := failOrderPayment(db, intentID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
				return
			}
		default:
			// Unhandled event types are acknowledged so the processor stops retrying.
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func confirmOrderPayment(c *gin.Context, db *gorm.DB, queue notifications.Queue, log *zap.Logger, intentID string) error {
	var order models.Order
	err := db.Where("stripe_payment_intent_id = ?", intentID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	// Checkout usually lands first and has already confirmed; the webhook is
	// the safety net for orders stuck pending.
	if !models.CanTransitionPayment(order.PaymentStatus, models.PaymentStatusCompleted) {
		return nil
	}

	updates := map[string]interface{}{"payment_status": models.PaymentStatusCompleted}
	if models.CanTransition(order.Status, models.OrderStatusConfirmed) {
		updates["status"] = models.OrderStatusConfirmed
	}
	if err := db.Model(&order).Updates(updates).Error; err != nil {
		return err
	}

	if order.UserID != nil {
		evt := notifications.Event{
			Type:    notifications.TypePaymentReceipt,
			UserID:  *order.UserID,
			OrderID: order.ID,
		}
		if err := queue.Publish(c.Request.Context(), evt); err != nil {
			log.Warn("failed to publish payment receipt event",
				zap.String("order_number", order.OrderNumber), zap.Error(err))
		}
	}
	return nil
}

func failOrderPayment(db *gorm.DB, intentID string) error {
	var order models.Order
	err := db.Where("stripe_payment_intent_id = ?", intentID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if !models.CanTransitionPayment(order.PaymentStatus, models.PaymentStatusFailed) {
		return nil
	}

	updates := map[string]interface{}{"payment_status": models.PaymentStatusFailed}
	if models.CanTransition(order.Status, models.OrderStatusFailed) {
		updates["status"] = models.OrderStatusFailed
	}
	return db.Model(&order).Updates(updates).Error
}

// verifyStripeSignature checks the v1 scheme: HMAC-SHA256 of
// "<timestamp>.<payload>" keyed with the endpoint secret.
func verifyStripeSignature(payload []byte, header, secret string) bool {
	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return true
		}
	}
	return false
}
