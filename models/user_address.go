package models

import "time"

// UserAddress is a saved address-book entry. Checkout copies it into the
// order's address snapshot; later edits here never touch past orders.
// Labels are unique per user.
type UserAddress struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_user_address_label" json:"user_id"`
	Label  string `gorm:"size:100;not null;uniqueIndex:idx_user_address_label" json:"label"`

	FirstName string  `gorm:"size:100;not null" json:"first_name"`
	LastName  string  `gorm:"size:100;not null" json:"last_name"`
	Company   *string `gorm:"size:200" json:"company,omitempty"`
	Phone     *string `gorm:"size:50" json:"phone,omitempty"`

	Line1      string  `gorm:"size:255;not null" json:"line1"`
	Line2      *string `gorm:"size:255" json:"line2,omitempty"`
	City       string  `gorm:"size:100;not null" json:"city"`
	State      string  `gorm:"size:100;not null" json:"state"`
	PostalCode string  `gorm:"size:20;not null" json:"postal_code"`
	Country    string  `gorm:"size:2;default:US" json:"country"`

	IsDefault  bool `gorm:"default:false" json:"is_default"`
	IsBilling  bool `gorm:"default:true" json:"is_billing"`
	IsShipping bool `gorm:"default:true" json:"is_shipping"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToAddress copies the entry into a checkout address snapshot.
func (a *UserAddress) ToAddress() Address {
	addr := Address{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Line1:      a.Line1,
		City:       a.City,
		State:      a.State,
		Country:    a.Country,
		PostalCode: a.PostalCode,
	}
	if a.Phone != nil {
		addr.Phone = *a.Phone
	}
	if a.Line2 != nil {
		addr.Line2 = *a.Line2
	}
	return addr
}
