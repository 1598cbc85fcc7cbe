package models

import (
	"fmt"
	"strings"
	"time"
)

// ContactInquiryStatus is the studio-side funnel for inbound inquiries.
type ContactInquiryStatus string

const (
	InquiryStatusNew        ContactInquiryStatus = "new"
	InquiryStatusContacted  ContactInquiryStatus = "contacted"
	InquiryStatusInProgress ContactInquiryStatus = "in_progress"
	InquiryStatusClosed     ContactInquiryStatus = "closed"
)

func ParseContactInquiryStatus(s string) (ContactInquiryStatus, error) {
	switch ContactInquiryStatus(strings.ToLower(s)) {
	case InquiryStatusNew, InquiryStatusContacted, InquiryStatusInProgress, InquiryStatusClosed:
		return ContactInquiryStatus(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("invalid inquiry status %q", s)
	}
}

// ContactInquiry is a message from the public contact page. Visitors create
// them anonymously; the studio works them through the status funnel.
type ContactInquiry struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name    string  `gorm:"size:255;not null" json:"name"`
	Email   string  `gorm:"size:255;not null" json:"email"`
	Phone   *string `gorm:"size:50" json:"phone,omitempty"`
	Company *string `gorm:"size:255" json:"company,omitempty"`

	Subject     string  `gorm:"size:100;not null" json:"subject"`
	Message     string  `gorm:"type:text;not null" json:"message"`
	BudgetRange *string `gorm:"size:50" json:"budget_range,omitempty"`
	Timeline    *string `gorm:"size:50" json:"timeline,omitempty"`

	Source    string  `gorm:"size:50;default:contact_page" json:"source"`
	IPAddress *string `gorm:"size:45" json:"-"`
	UserAgent *string `gorm:"type:text" json:"-"`

	Status         ContactInquiryStatus `gorm:"size:50;default:new" json:"status"`
	AssignedTo     *string              `gorm:"size:255" json:"assigned_to,omitempty"`
	ResponseSentAt *time.Time           `json:"response_sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConsultationBooking is a design-consultation request (virtual, in-person
// or premium). Confirmation happens off-platform; the row tracks the state.
type ConsultationBooking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name  string  `gorm:"size:255;not null" json:"name"`
	Email string  `gorm:"size:255;not null" json:"email"`
	Phone *string `gorm:"size:50" json:"phone,omitempty"`

	ConsultationType string     `gorm:"size:50;not null" json:"consultation_type"`
	PreferredDate    *time.Time `json:"preferred_date,omitempty"`
	DurationMinutes  int        `gorm:"default:60" json:"duration_minutes"`

	ProjectDescription *string `gorm:"type:text" json:"project_description,omitempty"`
	BudgetRange        *string `gorm:"size:50" json:"budget_range,omitempty"`
	Timeline           *string `gorm:"size:50" json:"timeline,omitempty"`

	Status        string     `gorm:"size:50;default:pending" json:"status"`
	ConfirmedDate *time.Time `json:"confirmed_date,omitempty"`
	MeetingLink   *string    `gorm:"size:500" json:"meeting_link,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
