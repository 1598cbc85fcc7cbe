package models

import "time"

// User is created by the identity-provider webhook on "user created" events.
// ClerkID is the stable external identifier carried in bearer tokens; the
// integer ID is the internal key everything else references.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClerkID   string    `gorm:"uniqueIndex;not null" json:"clerk_id"`
	Email     string    `gorm:"size:255;index" json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	IsAdmin   bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CartItems     []CartItem     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Orders        []Order        `gorm:"foreignKey:UserID" json:"-"`
	WishlistItems []WishlistItem `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
