package accountControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/auth"
	"github.com/jyush98/jason-co-ecom/notifications"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetProfileHandler returns the caller's account record.
func GetProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// UpdateProfileHandler updates the mutable profile fields and notifies the
// account owner. Email and the external identity are managed by the identity
// provider, not here.
func UpdateProfileHandler(db *gorm.DB, queue notifications.Queue, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updates := map[string]interface{}{}
		if req.FirstName != nil {
			updates["first_name"] = *req.FirstName
		}
		if req.LastName != nil {
			updates["last_name"] = *req.LastName
		}
		if req.Phone != nil {
			updates["phone"] = *req.Phone
		}
		if len(updates) == 0 {
			c.JSON(http.StatusOK, user)
			return
		}

		if err := db.Model(user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}

		evt := notifications.Event{Type: notifications.TypeProfileUpdate, UserID: user.ID}
		if err := queue.Publish(c.Request.Context(), evt); err != nil {
			log.Warn("failed to publish profile update event", zap.Uint("user_id", user.ID), zap.Error(err))
		}

		c.JSON(http.StatusOK, user)
	}
}
