package models

import "time"

type CustomOrderStatus string

const (
	CustomOrderStatusInquiry    CustomOrderStatus = "inquiry"
	CustomOrderStatusQuoted     CustomOrderStatus = "quoted"
	CustomOrderStatusApproved   CustomOrderStatus = "approved"
	CustomOrderStatusInProgress CustomOrderStatus = "in_progress"
	CustomOrderStatusCompleted  CustomOrderStatus = "completed"
	CustomOrderStatusCancelled  CustomOrderStatus = "cancelled"
)

// CustomOrder is the multi-step custom-jewelry intake form. It stays a draft
// until the final submit, tracked by CurrentStep.
type CustomOrder struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"not null" json:"email"`
	Phone *string `json:"phone,omitempty"`

	// Step 1: vision
	ProjectType        *string `json:"project_type,omitempty"`
	StylePreference    *string `json:"style_preference,omitempty"`
	ProjectDescription *string `json:"project_description,omitempty"`
	InspirationNotes   *string `json:"inspiration_notes,omitempty"`

	// Step 2: specifications
	Materials           *string `json:"materials,omitempty"`
	SpecialRequirements *string `json:"special_requirements,omitempty"`

	// Step 3: investment
	BudgetRange         *string `gorm:"size:20" json:"budget_range,omitempty"`
	EstimatedPriceCents *int64  `json:"estimated_price_cents,omitempty"`

	// Step 4: coordination
	TimelinePreference *string    `gorm:"size:20" json:"timeline_preference,omitempty"`
	TargetCompletion   *time.Time `json:"target_completion,omitempty"`

	Status      CustomOrderStatus `gorm:"type:varchar(20);default:'inquiry';index" json:"status"`
	CurrentStep int               `gorm:"default:1" json:"current_step"`
	IsDraft     bool              `gorm:"default:true" json:"is_draft"`

	InternalNotes *string `json:"-"`

	Images   []CustomOrderImage    `gorm:"foreignKey:CustomOrderID;constraint:OnDelete:CASCADE" json:"images"`
	Timeline []CustomOrderMilestone `gorm:"foreignKey:CustomOrderID" json:"timeline"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CustomOrderImage struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	CustomOrderID uint    `gorm:"index;not null" json:"custom_order_id"`
	ImageURL      string  `gorm:"not null" json:"image_url"`
	Caption       *string `json:"caption,omitempty"`
	UploadOrder   int     `gorm:"default:0" json:"upload_order"`
	CreatedAt     time.Time `json:"created_at"`
}

// CustomOrderMilestone is an append-only timeline entry on an intake.
type CustomOrderMilestone struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CustomOrderID uint       `gorm:"index;not null" json:"custom_order_id"`
	Milestone     string     `gorm:"not null" json:"milestone"`
	Description   *string    `json:"description,omitempty"`
	IsCompleted   bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedBy     *string    `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
