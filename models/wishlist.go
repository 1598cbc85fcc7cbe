package models

import "time"

// WishlistItem saves a product for later, capturing the price at add time so
// price-drop notifications can compare against it.
type WishlistItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"product_id"`

	Notes          *string `json:"notes,omitempty"`
	CollectionName *string `gorm:"size:100" json:"collection_name,omitempty"`
	Priority       int     `gorm:"default:3" json:"priority"` // 1=high, 2=medium, 3=low

	PriceWhenAddedCents *int64 `json:"price_when_added_cents,omitempty"`
	NotifyPriceDrop     bool   `gorm:"default:false" json:"notify_price_drop"`

	Product Product `gorm:"foreignKey:ProductID" json:"product"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
