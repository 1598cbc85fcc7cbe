package models

import (
	"time"

	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductStatusDraft        ProductStatus = "draft"
	ProductStatusActive       ProductStatus = "active"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Product prices are integer minor units (cents), always.
type Product struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	SKU         *string `gorm:"size:50;index" json:"sku,omitempty"`
	Slug        *string `gorm:"size:200;index" json:"slug,omitempty"`

	PriceCents          int64  `gorm:"not null" json:"price_cents"`
	CompareAtPriceCents *int64 `json:"compare_at_price_cents,omitempty"`

	InventoryCount    int  `gorm:"default:0" json:"inventory_count"`
	TrackInventory    bool `gorm:"default:true" json:"track_inventory"`
	LowStockThreshold int  `gorm:"default:5" json:"low_stock_threshold"`

	Status   ProductStatus `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	Featured bool          `gorm:"default:false" json:"featured"`

	ImageURL *string `gorm:"size:500" json:"image_url,omitempty"`

	CategoryID   *uint       `gorm:"index" json:"category_id,omitempty"`
	Category     *Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Collections  []Collection `gorm:"many2many:product_collections" json:"collections,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Purchasable reports whether the product can be added to a cart or ordered.
func (p *Product) Purchasable(quantity int) bool {
	if p.Status != ProductStatusActive {
		return false
	}
	if p.TrackInventory && p.InventoryCount < quantity {
		return false
	}
	return true
}

// Category is a self-referencing tree for hierarchical browsing.
type Category struct {
	ID       uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string     `gorm:"uniqueIndex;not null" json:"name"`
	Slug     *string    `gorm:"size:200" json:"slug,omitempty"`
	ParentID *uint      `gorm:"index" json:"parent_id,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

type Collection struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description string    `json:"description"`
	Products    []Product `gorm:"many2many:product_collections" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
