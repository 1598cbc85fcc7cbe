package accountControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/auth"
	"github.com/jyush98/jason-co-ecom/models"
	"github.com/jyush98/jason-co-ecom/notifications"
	"gorm.io/gorm"
)

// GetPreferencesHandler returns the caller's notification preferences,
// creating the default document on first access.
func GetPreferencesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		pref, err := notifications.GetOrCreatePreferences(db, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
			return
		}
		c.JSON(http.StatusOK, pref)
	}
}

type updatePreferencesRequest struct {
	EmailNotifications     *models.EmailPrefs     `json:"email_notifications"`
	MarketingNotifications *models.MarketingPrefs `json:"marketing_notifications"`
	AccountNotifications   *models.AccountPrefs   `json:"account_notifications"`
	SMSNotifications       *models.SMSPrefs       `json:"sms_notifications"`
	NotificationFrequency  *string                `json:"notification_frequency"`
	QuietHours             *models.QuietHours     `json:"quiet_hours"`
}

// UpdatePreferencesHandler merges the supplied sections into the stored
// document. Sections absent from the request are untouched; the result is
// normalized, so required notifications stay on no matter what was sent.
func UpdatePreferencesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		var req updatePreferencesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		pref, err := notifications.GetOrCreatePreferences(db, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
			return
		}

		if req.EmailNotifications != nil {
			pref.EmailNotifications = *req.EmailNotifications
		}
		if req.MarketingNotifications != nil {
			pref.MarketingNotifications = *req.MarketingNotifications
		}
		if req.AccountNotifications != nil {
			pref.AccountNotifications = *req.AccountNotifications
		}
		if req.SMSNotifications != nil {
			pref.SMSNotifications = *req.SMSNotifications
		}
		if req.NotificationFrequency != nil {
			pref.NotificationFrequency = *req.NotificationFrequency
		}
		if req.QuietHours != nil {
			pref.QuietHours = *req.QuietHours
		}

		pref.Normalize()

		if err := db.Save(pref).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
			return
		}
		c.JSON(http.StatusOK, pref)
	}
}

// ResetPreferencesHandler replaces the caller's preferences with defaults.
func ResetPreferencesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		pref, err := notifications.GetOrCreatePreferences(db, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
			return
		}

		defaults := models.DefaultNotificationPreference(user.ID)
		pref.EmailNotifications = defaults.EmailNotifications
		pref.MarketingNotifications = defaults.MarketingNotifications
		pref.AccountNotifications = defaults.AccountNotifications
		pref.SMSNotifications = defaults.SMSNotifications
		pref.NotificationFrequency = defaults.NotificationFrequency
		pref.QuietHours = defaults.QuietHours

		if err := db.Save(pref).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset preferences"})
			return
		}
		c.JSON(http.StatusOK, pref)
	}
}

type toggleRequest struct {
	Category string `json:"category" binding:"required"`
	Key      string `json:"key" binding:"required"`
	Enabled  bool   `json:"enabled"`
}

// TogglePreferenceHandler flips a single (category, key) switch. Required
// pairs cannot be turned off.
func TogglePreferenceHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		var req toggleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if notifications.IsRequired(req.Category, req.Key) && !req.Enabled {
			c.JSON(http.StatusConflict, gin.H{"error": "This notification cannot be disabled"})
			return
		}

		pref, err := notifications.GetOrCreatePreferences(db, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
			return
		}

		if !setPreferenceKey(pref, req.Category, req.Key, req.Enabled) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown preference key"})
			return
		}

		pref.Normalize()

		if err := db.Save(pref).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
			return
		}
		c.JSON(http.StatusOK, pref)
	}
}

func setPreferenceKey(pref *models.NotificationPreference, category, key string, enabled bool) bool {
	switch category {
	case notifications.CategoryEmail:
		return setEmailKey(&pref.EmailNotifications, key, enabled)
	case notifications.CategoryMarketing:
		return setMarketingKey(&pref.MarketingNotifications, key, enabled)
	case notifications.CategoryAccount:
		return setAccountKey(&pref.AccountNotifications, key, enabled)
	case notifications.CategorySMS:
		return setSMSKey(&pref.SMSNotifications, key, enabled)
	default:
		return false
	}
}

func setEmailKey(p *models.EmailPrefs, key string, v bool) bool {
	switch key {
	case "order_confirmations":
		p.OrderConfirmations = v
	case "order_updates":
		p.OrderUpdates = v
	case "shipping_notifications":
		p.ShippingNotifications = v
	case "delivery_confirmations":
		p.DeliveryConfirmations = v
	case "payment_receipts":
		p.PaymentReceipts = v
	case "returns_refunds":
		p.ReturnsRefunds = v
	default:
		return false
	}
	return true
}

func setMarketingKey(p *models.MarketingPrefs, key string, v bool) bool {
	switch key {
	case "new_products":
		p.NewProducts = v
	case "sales_promotions":
		p.SalesPromotions = v
	case "exclusive_offers":
		p.ExclusiveOffers = v
	case "collection_launches":
		p.CollectionLaunches = v
	case "wishlist_updates":
		p.WishlistUpdates = v
	case "price_drops":
		p.PriceDrops = v
	case "abandoned_cart":
		p.AbandonedCart = v
	default:
		return false
	}
	return true
}

func setAccountKey(p *models.AccountPrefs, key string, v bool) bool {
	switch key {
	case "security_alerts":
		p.SecurityAlerts = v
	case "password_changes":
		p.PasswordChanges = v
	case "profile_updates":
		p.ProfileUpdates = v
	case "privacy_updates":
		p.PrivacyUpdates = v
	default:
		return false
	}
	return true
}

func setSMSKey(p *models.SMSPrefs, key string, v bool) bool {
	switch key {
	case "enabled":
		p.Enabled = v
	case "order_updates":
		p.OrderUpdates = v
	case "shipping_alerts":
		p.ShippingAlerts = v
	case "delivery_notifications":
		p.DeliveryNotifications = v
	case "security_alerts":
		p.SecurityAlerts = v
	default:
		return false
	}
	return true
}
