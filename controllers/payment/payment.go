package paymentControllers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	orderControllers "github.com/jyush98/jason-co-ecom/controllers/order"
	"github.com/jyush98/jason-co-ecom/models"
	"github.com/jyush98/jason-co-ecom/notifications"
	"github.com/jyush98/jason-co-ecom/payments"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrPaymentNotConfirmed  = errors.New("payment not confirmed")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrOrderNumberExhausted = errors.New("could not allocate a unique order number")
	ErrAddressNotFound      = errors.New("saved address not found")
	ErrNoShippingAddress    = errors.New("shipping address required")
)

// orderNumberAttempts bounds regeneration on order-number collisions.
const orderNumberAttempts = 5

// Pricing holds the server-side totals policy. Client-supplied totals are
// never trusted; everything is recomputed from these knobs and the cart.
type Pricing struct {
	TaxRateBps            int64 // e.g. 800 = 8%
	FlatShippingCents     int64
	FreeShippingThreshold int64 // subtotal at or above this ships free
}

// Totals is the financial breakdown computed for a cart.
type Totals struct {
	SubtotalCents int64
	TaxCents      int64
	ShippingCents int64
	TotalCents    int64
}

type ShippingMethod struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents *int64 `json:"price_cents"`
}

type GiftOptions struct {
	IsGift   bool    `json:"is_gift"`
	Message  *string `json:"message"`
	Wrapping bool    `json:"wrapping"`
}

// SubmitOrderRequest carries the checkout selections. The shipping address
// arrives either inline or as a saved address-book id; inline wins when both
// are present.
type SubmitOrderRequest struct {
	ShippingAddress   models.Address  `json:"shipping_address"`
	ShippingAddressID *uint           `json:"shipping_address_id"`
	BillingAddress    *models.Address `json:"billing_address"`
	ShippingMethod    ShippingMethod  `json:"shipping_method"`
	GiftOptions       *GiftOptions    `json:"gift_options"`
	OrderNotes        *string         `json:"order_notes"`
	PaymentIntentID   string          `json:"payment_intent_id" binding:"required"`
}

// SubmitOrderResult is what the submit-order call reports back.
type SubmitOrderResult struct {
	Order                 *models.Order
	Created               bool // false when the intent already had an order
	NotificationScheduled bool
}

// ComputeTotals prices a cart server-side. The shipping method's own price
// wins when it carries one; otherwise the flat-rate/free-threshold policy
// applies.
func ComputeTotals(items []models.CartItem, pricing Pricing, method ShippingMethod) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += item.Product.PriceCents * int64(item.Quantity)
	}

	tax := subtotal * pricing.TaxRateBps / 10000

	var shipping int64
	if method.PriceCents != nil {
		shipping = *method.PriceCents
	} else if subtotal < pricing.FreeShippingThreshold {
		shipping = pricing.FlatShippingCents
	}

	return Totals{
		SubtotalCents: subtotal,
		TaxCents:      tax,
		ShippingCents: shipping,
		TotalCents:    subtotal + tax + shipping,
	}
}

// ResolveCustomerEmail walks the fallback chain: token email → user record →
// shipping address → billing address. An empty result never blocks the order;
// it only means no confirmation goes out.
func ResolveCustomerEmail(tokenEmail string, user *models.User, shipping models.Address, billing *models.Address) string {
	if tokenEmail != "" {
		return tokenEmail
	}
	if user != nil && user.Email != "" {
		return user.Email
	}
	if shipping.Email != "" {
		return shipping.Email
	}
	if billing != nil && billing.Email != "" {
		return billing.Email
	}
	return ""
}

// SubmitOrder converts a succeeded payment intent into exactly one Order.
//
// Sequence is fixed: verify payment → read cart → compute totals → write
// order, items and cart deletion in one transaction → publish the
// confirmation event after commit. Submitting the same intent twice returns
// the original order instead of creating a second one.
func SubmitOrder(
	ctx context.Context,
	db *gorm.DB,
	gw payments.Gateway,
	queue notifications.Queue,
	log *zap.Logger,
	pricing Pricing,
	user *models.User,
	tokenEmail string,
	req SubmitOrderRequest,
) (*SubmitOrderResult, error) {
	// Fast path: this intent already produced an order.
	if existing, err := findOrderByIntent(db, req.PaymentIntentID); err != nil {
		return nil, err
	} else if existing != nil {
		return &SubmitOrderResult{Order: existing, Created: false}, nil
	}

	intent, err := gw.RetrieveIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != payments.IntentSucceeded {
		return nil, fmt.Errorf("%w: intent status is %q", ErrPaymentNotConfirmed, intent.Status)
	}

	var cartItems []models.CartItem
	if err := db.Preload("Product").Where("user_id = ?", user.ID).Find(&cartItems).Error; err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	if req.ShippingAddress.Line1 == "" && req.ShippingAddressID != nil {
		var saved models.UserAddress
		err := db.Where("id = ? AND user_id = ?", *req.ShippingAddressID, user.ID).First(&saved).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		if err != nil {
			return nil, err
		}
		req.ShippingAddress = saved.ToAddress()
	}
	if req.ShippingAddress.Line1 == "" {
		return nil, ErrNoShippingAddress
	}

	totals := ComputeTotals(cartItems, pricing, req.ShippingMethod)
	customerEmail := ResolveCustomerEmail(tokenEmail, user, req.ShippingAddress, req.BillingAddress)

	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}

	order := models.Order{
		UserID:            &user.ID,
		CustomerFirstName: req.ShippingAddress.FirstName,
		CustomerLastName:  req.ShippingAddress.LastName,

		SubtotalCents: totals.SubtotalCents,
		TaxCents:      totals.TaxCents,
		ShippingCents: totals.ShippingCents,
		DiscountCents: 0,
		TotalCents:    totals.TotalCents,
		Currency:      strings.ToUpper(intent.Currency),

		Status:        models.OrderStatusConfirmed,
		PaymentStatus: models.PaymentStatusCompleted,

		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,

		StripePaymentIntentID: req.PaymentIntentID,
		OrderNotes:            req.OrderNotes,
	}
	if order.Currency == "" {
		order.Currency = "USD"
	}
	if customerEmail != "" {
		order.CustomerEmail = &customerEmail
	}
	if req.ShippingAddress.Phone != "" {
		order.CustomerPhone = &req.ShippingAddress.Phone
	}
	if req.ShippingMethod.ID != "" {
		order.ShippingMethodID = &req.ShippingMethod.ID
	}
	if req.ShippingMethod.Name != "" {
		order.ShippingMethodName = &req.ShippingMethod.Name
	}
	if req.GiftOptions != nil {
		order.IsGift = req.GiftOptions.IsGift
		order.GiftMessage = req.GiftOptions.Message
		order.GiftWrapping = req.GiftOptions.Wrapping
	}

	for _, item := range cartItems {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:       item.ProductID,
			ProductName:     item.Product.Name,
			ProductSKU:      item.Product.SKU,
			ProductImageURL: item.Product.ImageURL,
			UnitPriceCents:  item.Product.PriceCents,
			Quantity:        item.Quantity,
			LineTotalCents:  item.Product.PriceCents * int64(item.Quantity),
		})
	}

	created, err := createOrderOnce(db, &order, user.ID, cartItems)
	if err != nil {
		return nil, err
	}
	if !created {
		// Lost a race on the intent id; the winner's order is the order.
		existing, err := findOrderByIntent(db, req.PaymentIntentID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("order for intent %s vanished after conflict", req.PaymentIntentID)
		}
		return &SubmitOrderResult{Order: existing, Created: false}, nil
	}

	orderControllers.BroadcastOrderEvent("order_created", &order)

	// Best effort from here: the order stands whether or not this works.
	scheduled := false
	if customerEmail != "" {
		evt := notifications.Event{
			Type:     notifications.TypeOrderConfirmation,
			UserID:   user.ID,
			OrderID:  order.ID,
			Override: true,
		}
		if err := queue.Publish(ctx, evt); err != nil {
			log.Error("failed to schedule order confirmation",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err),
			)
		} else {
			scheduled = true
		}
	} else {
		log.Warn("no customer email resolved, confirmation not scheduled",
			zap.String("order_number", order.OrderNumber),
		)
	}

	return &SubmitOrderResult{Order: &order, Created: true, NotificationScheduled: scheduled}, nil
}

// createOrderOnce writes the order, its items and the cart deletion in a
// single transaction, retrying only on order-number collisions. It returns
// created=false when another submission of the same intent won the race.
func createOrderOnce(db *gorm.DB, order *models.Order, userID uint, cartItems []models.CartItem) (bool, error) {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.ID = 0
		for i := range order.Items {
			order.Items[i].ID = 0
			order.Items[i].OrderID = 0
		}
		order.OrderNumber = models.GenerateOrderNumber()

		err := db.Transaction(func(tx *gorm.DB) error {
			for _, item := range cartItems {
				if err := deductInventory(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
			if err := tx.Create(order).Error; err != nil {
				return err
			}
			return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
		})
		if err == nil {
			return true, nil
		}
		if isUniqueViolation(err, "stripe_payment_intent") {
			return false, nil
		}
		if isUniqueViolation(err, "order_number") {
			continue
		}
		return false, err
	}
	return false, ErrOrderNumberExhausted
}

// deductInventory decrements stock atomically for tracked products. The
// guarded UPDATE stands in for a row lock so two orders cannot both take the
// last piece.
func deductInventory(tx *gorm.DB, productID uint, quantity int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND (track_inventory = ? OR inventory_count >= ?)", productID, false, quantity).
		Update("inventory_count", gorm.Expr("CASE WHEN track_inventory THEN inventory_count - ? ELSE inventory_count END", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %d", ErrInsufficientStock, productID)
	}
	return nil
}

func findOrderByIntent(db *gorm.DB, intentID string) (*models.Order, error) {
	var order models.Order
	err := db.Preload("Items").Where("stripe_payment_intent_id = ?", intentID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// isUniqueViolation sniffs constraint errors by the conflicting column. Both
// postgres and sqlite name the column in their messages.
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, column) {
		return false
	}
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
