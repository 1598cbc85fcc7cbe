package notifications

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jyush98/jason-co-ecom/models"
	"gorm.io/gorm"
)

// GetOrCreatePreferences loads a user's preference row, creating it with
// defaults on first access.
func GetOrCreatePreferences(db *gorm.DB, userID uint) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := db.Where("user_id = ?", userID).First(&pref).Error
	if err == nil {
		return &pref, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pref = models.DefaultNotificationPreference(userID)
	if err := db.Create(&pref).Error; err != nil {
		return nil, err
	}
	return &pref, nil
}

// requiredKeys lists (category, key) pairs that always resolve to enabled,
// regardless of the stored preference.
var requiredKeys = map[string]map[string]bool{
	CategoryEmail: {
		"order_confirmations": true,
		"payment_receipts":    true,
	},
	CategoryAccount: {
		"security_alerts":  true,
		"password_changes": true,
	},
}

// IsRequired reports whether a (category, key) pair cannot be disabled.
func IsRequired(category, key string) bool {
	return requiredKeys[category][key]
}

// Resolve answers whether a (category, key) notification is enabled for the
// given preference document. Unknown keys fail closed; required keys are
// always enabled.
func Resolve(pref *models.NotificationPreference, category, key string) bool {
	if IsRequired(category, key) {
		return true
	}
	switch category {
	case CategoryEmail:
		return resolveEmailKey(pref.EmailNotifications, key)
	case CategoryMarketing:
		return resolveMarketingKey(pref.MarketingNotifications, key)
	case CategoryAccount:
		return resolveAccountKey(pref.AccountNotifications, key)
	case CategorySMS:
		return resolveSMSKey(pref.SMSNotifications, key)
	default:
		return false
	}
}

func resolveEmailKey(p models.EmailPrefs, key string) bool {
	switch key {
	case "order_confirmations":
		return p.OrderConfirmations
	case "order_updates":
		return p.OrderUpdates
	case "shipping_notifications":
		return p.ShippingNotifications
	case "delivery_confirmations":
		return p.DeliveryConfirmations
	case "payment_receipts":
		return p.PaymentReceipts
	case "returns_refunds":
		return p.ReturnsRefunds
	default:
		return false
	}
}

func resolveMarketingKey(p models.MarketingPrefs, key string) bool {
	switch key {
	case "new_products":
		return p.NewProducts
	case "sales_promotions":
		return p.SalesPromotions
	case "exclusive_offers":
		return p.ExclusiveOffers
	case "collection_launches":
		return p.CollectionLaunches
	case "wishlist_updates":
		return p.WishlistUpdates
	case "price_drops":
		return p.PriceDrops
	case "abandoned_cart":
		return p.AbandonedCart
	default:
		return false
	}
}

func resolveAccountKey(p models.AccountPrefs, key string) bool {
	switch key {
	case "security_alerts":
		return p.SecurityAlerts
	case "password_changes":
		return p.PasswordChanges
	case "profile_updates":
		return p.ProfileUpdates
	case "privacy_updates":
		return p.PrivacyUpdates
	default:
		return false
	}
}

func resolveSMSKey(p models.SMSPrefs, key string) bool {
	if !p.Enabled {
		return false
	}
	switch key {
	case "order_updates":
		return p.OrderUpdates
	case "shipping_alerts":
		return p.ShippingAlerts
	case "delivery_notifications":
		return p.DeliveryNotifications
	case "security_alerts":
		return p.SecurityAlerts
	default:
		return false
	}
}

// smsKeyFor maps an email-category preference key to its SMS counterpart.
// Only a subset of notifications have SMS delivery.
func smsKeyFor(emailKey string) string {
	switch emailKey {
	case "order_confirmations", "order_updates":
		return "order_updates"
	case "shipping_notifications":
		return "shipping_alerts"
	case "delivery_confirmations":
		return "delivery_notifications"
	case "security_alerts":
		return "security_alerts"
	default:
		return ""
	}
}

// IsQuietHoursActive evaluates the quiet-hours window at the given instant.
// A start later than the end means the window spans midnight. Malformed time
// strings fail open so bad data never silently suppresses delivery.
func IsQuietHoursActive(pref *models.NotificationPreference, now time.Time) bool {
	qh := pref.QuietHours
	if !qh.Enabled {
		return false
	}

	startMin, ok := parseClock(qh.StartTime)
	if !ok {
		return false
	}
	endMin, ok := parseClock(qh.EndTime)
	if !ok {
		return false
	}

	if qh.Timezone != "" {
		if loc, err := time.LoadLocation(qh.Timezone); err == nil {
			now = now.In(loc)
		}
	}
	nowMin := now.Hour()*60 + now.Minute()

	if startMin > endMin {
		// Window spans midnight, e.g. 22:00–08:00.
		return nowMin >= startMin || nowMin <= endMin
	}
	return nowMin >= startMin && nowMin <= endMin
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// evalGate is the one place the send decision lives: preference resolve,
// then quiet-hours suppression for anything below high priority. Required
// types pass unconditionally. The reason string feeds per-channel results.
func evalGate(pref *models.NotificationPreference, cfg Config, now time.Time) (bool, string) {
	if cfg.Required {
		return true, ""
	}
	if !Resolve(pref, cfg.Category, cfg.Key) {
		return false, "disabled by user preferences"
	}
	if cfg.Priority < PriorityHigh && IsQuietHoursActive(pref, now) {
		return false, "quiet hours active"
	}
	return true, ""
}

// ShouldSend decides whether a notification type goes out for a user right
// now: the preference must resolve enabled and quiet hours must not apply.
// Required types bypass both checks.
func ShouldSend(db *gorm.DB, userID uint, t Type, now time.Time) (bool, error) {
	cfg, ok := Lookup(t)
	if !ok {
		return false, nil
	}

	pref, err := GetOrCreatePreferences(db, userID)
	if err != nil {
		return false, err
	}
	send, _ := evalGate(pref, cfg, now)
	return send, nil
}
