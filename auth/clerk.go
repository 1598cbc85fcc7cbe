package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/models"
	"gorm.io/gorm"
)

var ErrNoIdentity = errors.New("no authenticated identity on request")

// ClerkID pulls the external user id set by the auth middleware.
func ClerkID(c *gin.Context) (string, error) {
	v, exists := c.Get("clerk_id")
	if !exists {
		return "", ErrNoIdentity
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "", ErrNoIdentity
	}
	return id, nil
}

// TokenEmail returns the email claim from the bearer token, if present.
func TokenEmail(c *gin.Context) string {
	v, _ := c.Get("token_email")
	email, _ := v.(string)
	return email
}

// ResolveUser maps the external identity to the internal user row.
func ResolveUser(db *gorm.DB, clerkID string) (*models.User, error) {
	var user models.User
	if err := db.Where("clerk_id = ?", clerkID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser resolves the request's authenticated internal user.
func CurrentUser(c *gin.Context, db *gorm.DB) (*models.User, error) {
	clerkID, err := ClerkID(c)
	if err != nil {
		return nil, err
	}
	return ResolveUser(db, clerkID)
}
