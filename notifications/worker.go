package notifications

import (
	"context"
	"time"

	"github.com/jyush98/jason-co-ecom/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Worker consumes notification events off the queue and drives the
// dispatcher. It holds its own database handle: by the time an event is
// processed, the request that published it has already returned.
type Worker struct {
	db         *gorm.DB
	queue      Queue
	dispatcher *Dispatcher
	log        *zap.Logger
}

func NewWorker(db *gorm.DB, queue Queue, dispatcher *Dispatcher, log *zap.Logger) *Worker {
	return &Worker{db: db, queue: queue, dispatcher: dispatcher, log: log}
}

// Start blocks consuming events until ctx is cancelled. Event failures are
// logged and never stop the loop.
func (w *Worker) Start(ctx context.Context) error {
	w.log.Info("notification worker started")
	return w.queue.Consume(ctx, func(evt Event) error {
		if err := w.handle(ctx, evt); err != nil {
			w.log.Error("notification event failed",
				zap.String("type", string(evt.Type)),
				zap.Uint("user_id", evt.UserID),
				zap.Uint("order_id", evt.OrderID),
				zap.Error(err),
			)
			return err
		}
		return nil
	})
}

func (w *Worker) handle(ctx context.Context, evt Event) error {
	dctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	data := evt.Data
	if evt.OrderID != 0 {
		orderData, err := w.orderTemplateData(evt.OrderID)
		if err != nil {
			return err
		}
		if data == nil {
			data = orderData
		} else {
			for k, v := range orderData {
				if _, exists := data[k]; !exists {
					data[k] = v
				}
			}
		}
	}

	results, err := w.dispatcher.Send(dctx, evt.UserID, evt.Type, data, evt.Override)
	if err != nil {
		return err
	}

	if evt.OrderID != 0 {
		w.recordEmailOutcome(evt, results)
	}
	return nil
}

func (w *Worker) orderTemplateData(orderID uint) (map[string]interface{}, error) {
	var order models.Order
	if err := w.db.Preload("Items").First(&order, orderID).Error; err != nil {
		return nil, err
	}

	items := make([]map[string]interface{}, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, map[string]interface{}{
			"name":             it.ProductName,
			"quantity":         it.Quantity,
			"unit_price_cents": it.UnitPriceCents,
			"line_total_cents": it.LineTotalCents,
		})
	}

	data := map[string]interface{}{
		"order_number":       order.OrderNumber,
		"status":             string(order.Status),
		"total_cents":        order.TotalCents,
		"subtotal_cents":     order.SubtotalCents,
		"customer_name":      order.CustomerName(),
		"items":              items,
		"order_date":         order.CreatedAt.Format("January 2, 2006"),
		"estimated_delivery": "3-5 business days",
	}
	if order.CustomerEmail != nil {
		data["email"] = *order.CustomerEmail
	}
	if order.TrackingNumber != nil {
		data["tracking_number"] = *order.TrackingNumber
	}
	return data, nil
}

// recordEmailOutcome flips the order's email-sent flag to match what actually
// happened. Flag updates are best-effort, same as the sends themselves.
func (w *Worker) recordEmailOutcome(evt Event, results map[Channel]Result) {
	var column string
	switch evt.Type {
	case TypeOrderConfirmation:
		column = "confirmation_email_sent"
	case TypeShippingNotification:
		column = "shipping_email_sent"
	case TypeDeliveryConfirmation:
		column = "delivery_email_sent"
	default:
		return
	}

	sent := results[ChannelEmail].Status == "sent"
	if err := w.db.Model(&models.Order{}).
		Where("id = ?", evt.OrderID).
		Update(column, sent).Error; err != nil {
		w.log.Error("failed to record email outcome",
			zap.Uint("order_id", evt.OrderID),
			zap.String("column", column),
			zap.Error(err),
		)
	}
}
