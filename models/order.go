package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string
type PaymentStatus string

const (
	// Order lifecycle
	OrderStatusPending    OrderStatus = "pending"    // Created, awaiting payment confirmation
	OrderStatusConfirmed  OrderStatus = "confirmed"  // Payment confirmed
	OrderStatusProcessing OrderStatus = "processing" // Being prepared
	OrderStatusShipped    OrderStatus = "shipped"    // Out for delivery
	OrderStatusDelivered  OrderStatus = "delivered"  // Customer received the item
	OrderStatusCancelled  OrderStatus = "cancelled"  // Cancelled before delivery
	OrderStatusFailed     OrderStatus = "failed"     // Could not be fulfilled

	// Payment lifecycle (independent axis)
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

// orderTransitions is the legal-transition table. Anything absent is rejected.
// cancelled/failed are reachable from every pre-delivered state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusProcessing, OrderStatusCancelled, OrderStatusFailed},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled, OrderStatusFailed},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled, OrderStatusFailed},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled, OrderStatusFailed},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
	OrderStatusFailed:     {},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusCompleted: {PaymentStatusRefunded},
	PaymentStatusFailed:    {},
	PaymentStatusRefunded:  {},
}

// CanTransition reports whether from → to is a legal order status change.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanTransitionPayment reports whether from → to is a legal payment status change.
func CanTransitionPayment(from, to PaymentStatus) bool {
	for _, s := range paymentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ParseOrderStatus maps a request string to an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(s)) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusFailed:
		return OrderStatus(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("invalid order status %q", s)
	}
}

// ParsePaymentStatus maps a request string to a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(strings.ToLower(s)) {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return PaymentStatus(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("invalid payment status %q", s)
	}
}

// Address is a checkout address snapshot, stored as a JSON column on the order.
type Address struct {
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}
}

// Order is the immutable-after-payment purchase record. Financial fields and
// items never change once payment_status is completed; only the lifecycle
// status, tracking fields and email flags move afterwards.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"size:50;uniqueIndex;not null" json:"order_number"`

	// Guest orders have no user row, only a contact email.
	UserID     *uint   `gorm:"index" json:"user_id,omitempty"`
	User       *User   `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	GuestEmail *string `gorm:"size:255" json:"guest_email,omitempty"`

	// Customer snapshot, captured at creation and independent of later edits.
	CustomerFirstName string  `gorm:"size:100" json:"customer_first_name"`
	CustomerLastName  string  `gorm:"size:100" json:"customer_last_name"`
	CustomerEmail     *string `gorm:"size:255;index" json:"customer_email,omitempty"`
	CustomerPhone     *string `gorm:"size:50" json:"customer_phone,omitempty"`

	// Financial breakdown, integer minor units.
	SubtotalCents int64  `gorm:"not null" json:"subtotal_cents"`
	TaxCents      int64  `gorm:"not null" json:"tax_cents"`
	ShippingCents int64  `gorm:"not null" json:"shipping_cents"`
	DiscountCents int64  `gorm:"not null;default:0" json:"discount_cents"`
	TotalCents    int64  `gorm:"not null" json:"total_cents"`
	Currency      string `gorm:"size:3;default:'USD'" json:"currency"`

	Status        OrderStatus   `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`

	ShippingAddress Address `gorm:"type:json" json:"shipping_address"`
	BillingAddress  Address `gorm:"type:json" json:"billing_address"`

	ShippingMethodID   *string `gorm:"size:50" json:"shipping_method_id,omitempty"`
	ShippingMethodName *string `gorm:"size:100" json:"shipping_method_name,omitempty"`
	TrackingNumber     *string `gorm:"size:100" json:"tracking_number,omitempty"`

	// Payment processor references. The unique index on the intent id is the
	// idempotency backstop for duplicate submissions.
	StripePaymentIntentID string  `gorm:"size:255;uniqueIndex" json:"stripe_payment_intent_id"`
	StripeChargeID        *string `gorm:"size:255" json:"stripe_charge_id,omitempty"`

	OrderNotes   *string `json:"order_notes,omitempty"`
	IsGift       bool    `gorm:"default:false" json:"is_gift"`
	GiftMessage  *string `json:"gift_message,omitempty"`
	GiftWrapping bool    `gorm:"default:false" json:"gift_wrapping"`

	ConfirmationEmailSent bool `gorm:"default:false" json:"confirmation_email_sent"`
	ShippingEmailSent     bool `gorm:"default:false" json:"shipping_email_sent"`
	DeliveryEmailSent     bool `gorm:"default:false" json:"delivery_email_sent"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// CustomerName returns the snapshot name for email templates.
func (o *Order) CustomerName() string {
	return strings.TrimSpace(o.CustomerFirstName + " " + o.CustomerLastName)
}

// OrderItem is a snapshot of a product at purchase time. line_total is fixed
// at creation as unit_price * quantity and never recomputed.
type OrderItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OrderID         uint      `gorm:"index;not null" json:"order_id"`
	ProductID       uint      `gorm:"not null" json:"product_id"`
	ProductName     string    `gorm:"not null" json:"product_name"`
	ProductSKU      *string   `gorm:"size:100" json:"product_sku,omitempty"`
	ProductImageURL *string   `gorm:"size:500" json:"product_image_url,omitempty"`
	UnitPriceCents  int64     `gorm:"not null" json:"unit_price_cents"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	LineTotalCents  int64     `gorm:"not null" json:"line_total_cents"`
	CreatedAt       time.Time `json:"created_at"`
}

// OrderStatusHistory is an append-only audit trail of status changes.
type OrderStatusHistory struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	OrderID    uint        `gorm:"index;not null" json:"order_id"`
	FromStatus OrderStatus `gorm:"type:varchar(20)" json:"from_status"`
	ToStatus   OrderStatus `gorm:"type:varchar(20);not null" json:"to_status"`
	ChangedBy  string      `gorm:"size:255" json:"changed_by"`
	Reason     string      `json:"reason"`
	CreatedAt  time.Time   `json:"created_at"`
}

// GenerateOrderNumber builds a human-readable order number, e.g.
// JC-20250829-7F3A. The caller retries on unique-index conflicts.
func GenerateOrderNumber() string {
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return fmt.Sprintf("JC-%s-%s", time.Now().Format("20060102"), suffix)
}
