package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"time"
	"unicode"
)

// Preference categories are explicit structs serialized to JSON columns.
// Absent fields fall back to the defaults at resolve time; the categories
// themselves are validated and normalized on write, never rejected wholesale.

type EmailPrefs struct {
	OrderConfirmations    bool `json:"order_confirmations"`
	OrderUpdates          bool `json:"order_updates"`
	ShippingNotifications bool `json:"shipping_notifications"`
	DeliveryConfirmations bool `json:"delivery_confirmations"`
	PaymentReceipts       bool `json:"payment_receipts"`
	ReturnsRefunds        bool `json:"returns_refunds"`
}

type MarketingPrefs struct {
	NewProducts       bool `json:"new_products"`
	SalesPromotions   bool `json:"sales_promotions"`
	ExclusiveOffers   bool `json:"exclusive_offers"`
	CollectionLaunches bool `json:"collection_launches"`
	WishlistUpdates   bool `json:"wishlist_updates"`
	PriceDrops        bool `json:"price_drops"`
	AbandonedCart     bool `json:"abandoned_cart"`
}

type AccountPrefs struct {
	SecurityAlerts  bool `json:"security_alerts"`
	PasswordChanges bool `json:"password_changes"`
	ProfileUpdates  bool `json:"profile_updates"`
	PrivacyUpdates  bool `json:"privacy_updates"`
}

type SMSPrefs struct {
	Enabled               bool   `json:"enabled"`
	PhoneNumber           string `json:"phone_number"`
	OrderUpdates          bool   `json:"order_updates"`
	ShippingAlerts        bool   `json:"shipping_alerts"`
	DeliveryNotifications bool   `json:"delivery_notifications"`
	SecurityAlerts        bool   `json:"security_alerts"`
}

type QuietHours struct {
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"start_time"` // HH:MM, 24h
	EndTime   string `json:"end_time"`
	Timezone  string `json:"timezone"`
}

func DefaultEmailPrefs() EmailPrefs {
	return EmailPrefs{
		OrderConfirmations:    true,
		OrderUpdates:          true,
		ShippingNotifications: true,
		DeliveryConfirmations: true,
		PaymentReceipts:       true,
		ReturnsRefunds:        true,
	}
}

func DefaultMarketingPrefs() MarketingPrefs {
	return MarketingPrefs{
		ExclusiveOffers: true,
		WishlistUpdates: true,
		PriceDrops:      true,
		AbandonedCart:   true,
	}
}

func DefaultAccountPrefs() AccountPrefs {
	return AccountPrefs{
		SecurityAlerts:  true,
		PasswordChanges: true,
		PrivacyUpdates:  true,
	}
}

func DefaultSMSPrefs() SMSPrefs {
	return SMSPrefs{SecurityAlerts: true}
}

func DefaultQuietHours() QuietHours {
	return QuietHours{
		StartTime: "22:00",
		EndTime:   "08:00",
		Timezone:  "America/New_York",
	}
}

// NotificationPreference is one-to-one with User, created lazily with defaults
// on first read or write and never hard-deleted (reset replaces with defaults).
type NotificationPreference struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	EmailNotifications     EmailPrefs     `gorm:"type:json" json:"email_notifications"`
	MarketingNotifications MarketingPrefs `gorm:"type:json" json:"marketing_notifications"`
	AccountNotifications   AccountPrefs   `gorm:"type:json" json:"account_notifications"`
	SMSNotifications       SMSPrefs       `gorm:"type:json" json:"sms_notifications"`

	NotificationFrequency string     `gorm:"size:20;default:'immediate'" json:"notification_frequency"` // immediate, daily, weekly
	QuietHours            QuietHours `gorm:"type:json" json:"quiet_hours"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultNotificationPreference builds the default document for a user.
func DefaultNotificationPreference(userID uint) NotificationPreference {
	return NotificationPreference{
		UserID:                 userID,
		EmailNotifications:     DefaultEmailPrefs(),
		MarketingNotifications: DefaultMarketingPrefs(),
		AccountNotifications:   DefaultAccountPrefs(),
		SMSNotifications:       DefaultSMSPrefs(),
		NotificationFrequency:  "immediate",
		QuietHours:             DefaultQuietHours(),
	}
}

var timePattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// Normalize enforces the write-time validation rules: required keys stay
// enabled, SMS without a usable phone number is force-disabled, malformed
// quiet-hours times reset to defaults, unknown frequencies become immediate.
func (p *NotificationPreference) Normalize() {
	// Required notifications cannot be disabled.
	p.EmailNotifications.OrderConfirmations = true
	p.EmailNotifications.PaymentReceipts = true
	p.AccountNotifications.SecurityAlerts = true
	p.AccountNotifications.PasswordChanges = true

	switch p.NotificationFrequency {
	case "immediate", "daily", "weekly":
	default:
		p.NotificationFrequency = "immediate"
	}

	if p.SMSNotifications.Enabled {
		var digits int
		for _, r := range p.SMSNotifications.PhoneNumber {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		if digits < 10 {
			p.SMSNotifications.Enabled = false
		}
	}

	if p.QuietHours.Enabled {
		if !timePattern.MatchString(p.QuietHours.StartTime) {
			p.QuietHours.StartTime = "22:00"
		}
		if !timePattern.MatchString(p.QuietHours.EndTime) {
			p.QuietHours.EndTime = "08:00"
		}
	}
}

// SMSPhoneNumber returns the phone number when SMS delivery is usable.
func (p *NotificationPreference) SMSPhoneNumber() string {
	if p.SMSNotifications.Enabled && p.SMSNotifications.PhoneNumber != "" {
		return p.SMSNotifications.PhoneNumber
	}
	return ""
}

func jsonValue(v interface{}) (driver.Value, error) { return json.Marshal(v) }

func jsonScan(dst interface{}, value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into %T", value, dst)
	}
}

func (p EmailPrefs) Value() (driver.Value, error)      { return jsonValue(p) }
func (p *EmailPrefs) Scan(value interface{}) error     { return jsonScan(p, value) }
func (p MarketingPrefs) Value() (driver.Value, error)  { return jsonValue(p) }
func (p *MarketingPrefs) Scan(value interface{}) error { return jsonScan(p, value) }
func (p AccountPrefs) Value() (driver.Value, error)    { return jsonValue(p) }
func (p *AccountPrefs) Scan(value interface{}) error   { return jsonScan(p, value) }
func (p SMSPrefs) Value() (driver.Value, error)        { return jsonValue(p) }
func (p *SMSPrefs) Scan(value interface{}) error       { return jsonScan(p, value) }
func (q QuietHours) Value() (driver.Value, error)      { return jsonValue(q) }
func (q *QuietHours) Scan(value interface{}) error     { return jsonScan(q, value) }
