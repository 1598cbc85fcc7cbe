package contactControllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/models"
	"github.com/jyush98/jason-co-ecom/notifications"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type inquiryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       *string `json:"phone"`
	Company     *string `json:"company"`
	Subject     string  `json:"subject" binding:"required"`
	Message     string  `json:"message" binding:"required"`
	BudgetRange *string `json:"budget_range"`
	Timeline    *string `json:"timeline"`
	Source      string  `json:"source"`
}

// SubmitInquiryHandler stores a contact-page inquiry and emails the studio.
// The studio email is best effort; the inquiry row is the record.
func SubmitInquiryHandler(db *gorm.DB, mailer notifications.Mailer, supportEmail string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req inquiryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ip := c.ClientIP()
		userAgent := c.Request.UserAgent()
		inquiry := models.ContactInquiry{
			Name:        req.Name,
			Email:       req.Email,
			Phone:       req.Phone,
			Company:     req.Company,
			Subject:     req.Subject,
			Message:     req.Message,
			BudgetRange: req.BudgetRange,
			Timeline:    req.Timeline,
			Source:      req.Source,
			Status:      models.InquiryStatusNew,
		}
		if inquiry.Source == "" {
			inquiry.Source = "contact_page"
		}
		if ip != "" {
			inquiry.IPAddress = &ip
		}
		if userAgent != "" {
			inquiry.UserAgent = &userAgent
		}

		if err := db.Create(&inquiry).Error; err != nil {
			log.Error("failed to store contact inquiry", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit inquiry"})
			return
		}

		if supportEmail != "" {
			subject := fmt.Sprintf("New %s inquiry #%d from %s", inquiry.Subject, inquiry.ID, inquiry.Name)
			body := fmt.Sprintf("<p>%s (%s) wrote:</p><p>%s</p>", inquiry.Name, inquiry.Email, inquiry.Message)
			if _, err := mailer.Send(c.Request.Context(), supportEmail, subject, body); err != nil {
				log.Warn("failed to email studio about inquiry",
					zap.Uint("inquiry_id", inquiry.ID), zap.Error(err))
			}
		}

		c.JSON(http.StatusCreated, gin.H{
			"inquiry_id": inquiry.ID,
			"message":    "Thank you for your inquiry. We'll respond within 2 hours during business hours.",
		})
	}
}

type consultationRequest struct {
	Name               string     `json:"name" binding:"required"`
	Email              string     `json:"email" binding:"required,email"`
	Phone              *string    `json:"phone"`
	ConsultationType   string     `json:"consultation_type" binding:"required"`
	PreferredDate      *time.Time `json:"preferred_date"`
	DurationMinutes    int        `json:"duration_minutes"`
	ProjectDescription *string    `json:"project_description"`
	BudgetRange        *string    `json:"budget_range"`
	Timeline           *string    `json:"timeline"`
}

// BookConsultationHandler records a design-consultation request.
func BookConsultationHandler(db *gorm.DB, mailer notifications.Mailer, supportEmail string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req consultationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		switch req.ConsultationType {
		case "virtual", "in-person", "premium":
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown consultation type"})
			return
		}

		booking := models.ConsultationBooking{
			Name:               req.Name,
			Email:              req.Email,
			Phone:              req.Phone,
			ConsultationType:   req.ConsultationType,
			PreferredDate:      req.PreferredDate,
			DurationMinutes:    req.DurationMinutes,
			ProjectDescription: req.ProjectDescription,
			BudgetRange:        req.BudgetRange,
			Timeline:           req.Timeline,
			Status:             "pending",
		}
		if booking.DurationMinutes <= 0 {
			booking.DurationMinutes = 60
		}

		if err := db.Create(&booking).Error; err != nil {
			log.Error("failed to store consultation booking", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book consultation"})
			return
		}

		if supportEmail != "" {
			subject := fmt.Sprintf("New %s consultation request #%d from %s",
				booking.ConsultationType, booking.ID, booking.Name)
			body := fmt.Sprintf("<p>%s (%s) requested a %s consultation.</p>",
				booking.Name, booking.Email, booking.ConsultationType)
			if _, err := mailer.Send(c.Request.Context(), supportEmail, subject, body); err != nil {
				log.Warn("failed to email studio about consultation",
					zap.Uint("booking_id", booking.ID), zap.Error(err))
			}
		}

		c.JSON(http.StatusCreated, gin.H{
			"booking_id": booking.ID,
			"message":    "Your consultation request is in. We'll confirm a time shortly.",
		})
	}
}

// ListInquiriesHandler is the admin view of the inquiry funnel, newest
// first, optionally filtered by status.
func ListInquiriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.Model(&models.ContactInquiry{})
		if status := c.Query("status"); status != "" {
			parsed, err := models.ParseContactInquiryStatus(status)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			q = q.Where("status = ?", parsed)
		}

		var inquiries []models.ContactInquiry
		if err := q.Order("created_at DESC").Limit(100).Find(&inquiries).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inquiries"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"inquiries": inquiries, "count": len(inquiries)})
	}
}

// UpdateInquiryStatusHandler moves an inquiry through the funnel and can
// assign it to a team member.
func UpdateInquiryStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id uint
		if _, err := fmt.Sscanf(c.Param("id"), "%d", &id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid inquiry id"})
			return
		}

		var req struct {
			Status     string  `json:"status" binding:"required"`
			AssignedTo *string `json:"assigned_to"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, err := models.ParseContactInquiryStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var inquiry models.ContactInquiry
		if err := db.First(&inquiry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inquiry"})
			return
		}

		updates := map[string]interface{}{"status": status}
		if req.AssignedTo != nil {
			updates["assigned_to"] = *req.AssignedTo
		}
		if status == models.InquiryStatusContacted && inquiry.ResponseSentAt == nil {
			updates["response_sent_at"] = time.Now().UTC()
		}

		if err := db.Model(&inquiry).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update inquiry"})
			return
		}
		c.JSON(http.StatusOK, inquiry)
	}
}
