package notifications

// Type is a logical notification event.
type Type string

const (
	// Order notifications
	TypeOrderConfirmation    Type = "order_confirmation"
	TypeOrderUpdate          Type = "order_update"
	TypeShippingNotification Type = "shipping_notification"
	TypeDeliveryConfirmation Type = "delivery_confirmation"
	TypePaymentReceipt       Type = "payment_receipt"
	TypeReturnRefund         Type = "return_refund"

	// Marketing notifications
	TypeNewProduct       Type = "new_product"
	TypeSalesPromotion   Type = "sales_promotion"
	TypeExclusiveOffer   Type = "exclusive_offer"
	TypeCollectionLaunch Type = "collection_launch"
	TypeWishlistUpdate   Type = "wishlist_update"
	TypePriceDrop        Type = "price_drop"
	TypeAbandonedCart    Type = "abandoned_cart"

	// Account notifications
	TypeSecurityAlert  Type = "security_alert"
	TypePasswordChange Type = "password_change"
	TypeProfileUpdate  Type = "profile_update"
	TypePrivacyUpdate  Type = "privacy_update"
)

// Channel is a delivery channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Priority levels. High and critical notifications are not suppressed by
// quiet hours.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// Preference categories, matching the stored preference document.
const (
	CategoryEmail     = "email_notifications"
	CategoryMarketing = "marketing_notifications"
	CategoryAccount   = "account_notifications"
	CategorySMS       = "sms_notifications"
)

// Config declares, per notification type, which preference gates it, which
// channels may carry it, its priority, and whether the user can disable it.
type Config struct {
	Category string
	Key      string
	Channels []Channel
	Priority Priority
	Required bool
}

var typeConfigs = map[Type]Config{
	TypeOrderConfirmation: {
		Category: CategoryEmail, Key: "order_confirmations",
		Channels: []Channel{ChannelEmail, ChannelSMS},
		Priority: PriorityHigh, Required: true,
	},
	TypeOrderUpdate: {
		Category: CategoryEmail, Key: "order_updates",
		Channels: []Channel{ChannelEmail, ChannelSMS},
		Priority: PriorityMedium,
	},
	TypeShippingNotification: {
		Category: CategoryEmail, Key: "shipping_notifications",
		Channels: []Channel{ChannelEmail, ChannelSMS},
		Priority: PriorityMedium,
	},
	TypeDeliveryConfirmation: {
		Category: CategoryEmail, Key: "delivery_confirmations",
		Channels: []Channel{ChannelEmail, ChannelSMS},
		Priority: PriorityMedium,
	},
	TypePaymentReceipt: {
		Category: CategoryEmail, Key: "payment_receipts",
		Channels: []Channel{ChannelEmail},
		Priority: PriorityHigh, Required: true,
	},
	TypeReturnRefund: {
		Category: CategoryEmail, Key: "returns_refunds",
		Channels: []Channel{ChannelEmail},
		Priority: PriorityMedium,
	},

	TypeNewProduct: {
		Category: CategoryMarketing, Key: "new_products",
		Channels: []Channel{ChannelEmail},
		Priority: PriorityLow,
	},
	TypeSalesPromotion: {
		Category: CategoryMarketing, Key: "sales_promotions",
		Channels: []Channel{ChannelEmail},
		Priority: PriorityLow,
	},
	TypeExclusiveOffer: {
		Category: CategoryMarketing, Key: "exclusive_offers",
		Channels: []Channel{ChannelEmail},
		Priority: PriorityMedium,
	},
	TypeCollectionLaunch: {
		Category: CategoryMarketing, Key: "collection_launches",
		Channels: []Channel{ChannelEmail},
		Priority: PriorityLow,
	},
	TypeWishlistUpdate: {
		Category: CategoryMarketing, Key: "wishlist_updates",
		Channels: []Channel{ChannelEmail},
		Priority: PriorityLow,
	},
	TypePriceDrop: {
		Category: CategoryMarketing, Key: "price_drops",
		Channels: []Channel{ChannelEmail},
		Priority: PriorityMedium,
	},
	TypeAbandonedCart: {
		Category: CategoryMarketing, Key: "abandoned_cart",
		Channels: []Channel{ChannelEmail},
		Priority: PriorityLow,
	},

	TypeSecurityAlert: {
		Category: CategoryAccount, Key: "security_alerts",
		Channels: []Channel{ChannelEmail, ChannelSMS},
		Priority: PriorityCritical, Required: true,
	},
	TypePasswordChange: {
		Category: CategoryAccount, Key: "password_changes",
		Channels: []Channel{ChannelEmail},
		Priority: PriorityHigh, Required: true,
	},
	TypeProfileUpdate: {
		Category: CategoryAccount, Key: "profile_updates",
		Channels: []Channel{ChannelEmail},
		Priority: PriorityLow,
	},
	TypePrivacyUpdate: {
		Category: CategoryAccount, Key: "privacy_updates",
		Channels: []Channel{ChannelEmail},
		Priority: PriorityMedium,
	},
}

// Lookup returns the static config for a notification type.
func Lookup(t Type) (Config, bool) {
	c, ok := typeConfigs[t]
	return c, ok
}
