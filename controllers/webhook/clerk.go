package webhookControllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type clerkEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		EmailAddresses []struct {
			ID           string `json:"id"`
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
		PrimaryEmailAddressID string `json:"primary_email_address_id"`
	} `json:"data"`
}

func (e *clerkEvent) primaryEmail() string {
	for _, addr := range e.Data.EmailAddresses {
		if addr.ID == e.Data.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	if len(e.Data.EmailAddresses) > 0 {
		return e.Data.EmailAddresses[0].EmailAddress
	}
	return ""
}

// ClerkWebhookHandler syncs identity-provider events into the users table.
// Creation is an upsert on the external id, so replayed deliveries are
// harmless.
func ClerkWebhookHandler(db *gorm.DB, log *zap.Logger, webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
			return
		}

		if webhookSecret != "" {
			if !verifySvixSignature(payload, c.Request.Header, webhookSecret) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
				return
			}
		}

		var event clerkEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
			return
		}
		if event.Data.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Event has no user id"})
			return
		}

		switch event.Type {
		case "user.created", "user.updated":
			user := models.User{
				ClerkID:   event.Data.ID,
				Email:     event.primaryEmail(),
				FirstName: event.Data.FirstName,
				LastName:  event.Data.LastName,
			}
			err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "clerk_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"email", "first_name", "last_name"}),
			}).Create(&user).Error
			if err != nil {
				log.Error("failed to sync user from identity provider",
					zap.String("clerk_id", event.Data.ID), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync user"})
				return
			}
		case "user.deleted":
			if err := db.Where("clerk_id = ?", event.Data.ID).Delete(&models.User{}).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

// verifySvixSignature checks the webhook signature scheme the identity
// provider uses: base64 HMAC-SHA256 over "<id>.<timestamp>.<payload>".
func verifySvixSignature(payload []byte, header http.Header, secret string) bool {
	id := header.Get("svix-id")
	timestamp := header.Get("svix-timestamp")
	signature := header.Get("svix-signature")
	if id == "" || timestamp == "" || signature == "" {
		return false
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	// The header may carry several space-separated "v1,<sig>" entries.
	for _, entry := range strings.Fields(signature) {
		parts := strings.SplitN(entry, ",", 2)
		if len(parts) == 2 && hmac.Equal([]byte(parts[1]), []byte(expected)) {
			return true
		}
	}
	return false
}
