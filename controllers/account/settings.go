package accountControllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/auth"
	"github.com/jyush98/jason-co-ecom/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingDefault struct {
	Value    string
	Category string
}

// settingDefaults whitelists the keys the settings API accepts. Keys absent
// from a user's rows resolve to these values; unknown keys are rejected at
// the boundary and never stored.
var settingDefaults = map[string]settingDefault{
	"theme":    {"system", "ui"},
	"language": {"en-US", "ui"},
	"currency": {"USD", "ui"},
	"timezone": {"America/New_York", "ui"},

	"login_notifications": {"true", "security"},
	"device_tracking":     {"true", "security"},
	"session_timeout":     {"30", "security"},

	"data_collection":  {"true", "privacy"},
	"marketing_emails": {"true", "privacy"},
	"personalized_ads": {"false", "privacy"},
	"public_profile":   {"false", "privacy"},
}

// ResolveSettings merges a user's stored rows over the defaults.
func ResolveSettings(db *gorm.DB, userID uint) (map[string]string, error) {
	var rows []models.UserSetting
	if err := db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}

	settings := make(map[string]string, len(settingDefaults))
	for key, def := range settingDefaults {
		settings[key] = def.Value
	}
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}

// GetSettingsHandler returns the caller's settings with defaults applied.
func GetSettingsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		settings, err := ResolveSettings(db, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"settings": settings})
	}
}

// UpdateSettingsHandler upserts the supplied keys. The whole batch is
// rejected when any key is unknown, so a typo cannot silently store junk.
func UpdateSettingsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		var req map[string]string
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(req) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No settings supplied"})
			return
		}
		for key := range req {
			if _, ok := settingDefaults[key]; !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown setting %q", key)})
				return
			}
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			for key, value := range req {
				row := models.UserSetting{
					UserID:   user.ID,
					Key:      key,
					Value:    value,
					Category: settingDefaults[key].Category,
				}
				err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "user_id"}, {Name: "setting_key"}},
					DoUpdates: clause.AssignmentColumns([]string{"setting_value", "category"}),
				}).Create(&row).Error
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
			return
		}

		settings, err := ResolveSettings(db, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"settings": settings})
	}
}

// ResetSettingsHandler drops all stored rows, reverting to defaults.
func ResetSettingsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		if err := db.Where("user_id = ?", user.ID).Delete(&models.UserSetting{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset settings"})
			return
		}

		settings := make(map[string]string, len(settingDefaults))
		for key, def := range settingDefaults {
			settings[key] = def.Value
		}
		c.JSON(http.StatusOK, gin.H{"settings": settings})
	}
}
