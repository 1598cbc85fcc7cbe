package customOrderControllers

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

type draftRequest struct {
	ID    *uint  `json:"id"`
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone *string `json:"phone"`

	ProjectType        *string `json:"project_type"`
	StylePreference    *string `json:"style_preference"`
	ProjectDescription *string `json:"project_description"`
	InspirationNotes   *string `json:"inspiration_notes"`

	Materials           *string `json:"materials"`
	SpecialRequirements *string `json:"special_requirements"`

	BudgetRange         *string `json:"budget_range"`
	EstimatedPriceCents *int64  `json:"estimated_price_cents"`

	TimelinePreference *string    `json:"timeline_preference"`
	TargetCompletion   *time.Time `json:"target_completion"`

	CurrentStep int `json:"current_step"`
}

func (r *draftRequest) apply(order *models.CustomOrder) {
	order.Name = r.Name
	order.Email = r.Email
	order.Phone = r.Phone
	order.ProjectType = r.ProjectType
	order.StylePreference = r.StylePreference
	order.ProjectDescription = r.ProjectDescription
	order.InspirationNotes = r.InspirationNotes
	order.Materials = r.Materials
	order.SpecialRequirements = r.SpecialRequirements
	order.BudgetRange = r.BudgetRange
	order.EstimatedPriceCents = r.EstimatedPriceCents
	order.TimelinePreference = r.TimelinePreference
	order.TargetCompletion = r.TargetCompletion
	if r.CurrentStep >= 1 && r.CurrentStep <= 4 {
		order.CurrentStep = r.CurrentStep
	}
}

// SaveDraftHandler creates or updates an in-progress intake. Drafts only need
// a name and email; everything else fills in step by step.
func SaveDraftHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req draftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var order models.CustomOrder
		if req.ID != nil {
			if err := db.First(&order, *req.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch draft"})
				return
			}
			if !order.IsDraft {
				c.JSON(http.StatusConflict, gin.H{"error": "Intake already submitted"})
				return
			}
		} else {
			order.IsDraft = true
			order.CurrentStep = 1
			order.Status = models.CustomOrderStatusInquiry
		}

		req.apply(&order)

		if err := db.Save(&order).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// SubmitHandler finalizes an intake: the draft becomes a live inquiry, the
// first milestone is recorded, and the studio gets an email.
func SubmitHandler(db *gorm.DB, mailer notifications.Mailer, supportEmail string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req draftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.ProjectDescription == nil || *req.ProjectDescription == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Project description is required"})
			return
		}

		var order models.CustomOrder
		if req.ID != nil {
			if err := db.First(&order, *req.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch draft"})
				return
			}
			if !order.IsDraft {
				c.JSON(http.StatusConflict, gin.H{"error": "Intake already submitted"})
				return
			}
		}

		req.apply(&order)
		order.IsDraft = false
		order.CurrentStep = 4
		order.Status = models.CustomOrderStatusInquiry

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&order).Error; err != nil {
				return err
			}
			desc := "Inquiry submitted and awaiting review"
			return tx.Create(&models.CustomOrderMilestone{
				CustomOrderID: order.ID,
				Milestone:     "inquiry_received",
				Description:   &desc,
				IsCompleted:   true,
				CompletedAt:   ptrTime(time.Now().UTC()),
			}).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit inquiry"})
			return
		}

		if supportEmail != "" {
			subject := fmt.Sprintf("New custom order inquiry #%d from %s", order.ID, order.Name)
			body := fmt.Sprintf("<p>%s (%s) submitted a custom order inquiry.</p><p>%s</p>",
				order.Name, order.Email, *req.ProjectDescription)
			if _, err := mailer.Send(c.Request.Context(), supportEmail, subject, body); err != nil {
				log.Warn("failed to email studio about new inquiry",
					zap.Uint("custom_order_id", order.ID), zap.Error(err))
			}
		}

		c.JSON(http.StatusCreated, order)
	}
}

// GetHandler returns one intake with its images and timeline.
func GetHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var order models.CustomOrder
		err := db.Preload("Images").Preload("Timeline").First(&order, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Custom order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch custom order"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// ListHandler is the admin listing, filterable by status.
func ListHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.CustomOrder{}).Where("is_draft = ?", false)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var orders []models.CustomOrder
		if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch custom orders"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"custom_orders": orders, "count": len(orders)})
	}
}

type updateStatusRequest struct {
	Status    string  `json:"status" binding:"required"`
	Milestone *string `json:"milestone"`
	Note      *string `json:"note"`
	ChangedBy *string `json:"changed_by"`
}

// UpdateStatusHandler moves an intake through its workflow and appends a
// milestone describing the change.
func UpdateStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		status := models.CustomOrderStatus(req.Status)
		switch status {
		case models.CustomOrderStatusInquiry, models.CustomOrderStatusQuoted,
			models.CustomOrderStatusApproved, models.CustomOrderStatusInProgress,
			models.CustomOrderStatusCompleted, models.CustomOrderStatusCancelled:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}

		var order models.CustomOrder
		if err := db.First(&order, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Custom order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch custom order"})
			return
		}

		milestone := "status_" + string(status)
		if req.Milestone != nil && *req.Milestone != "" {
			milestone = *req.Milestone
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&order).Update("status", status).Error; err != nil {
				return err
			}
			return tx.Create(&models.CustomOrderMilestone{
				CustomOrderID: order.ID,
				Milestone:     milestone,
				Description:   req.Note,
				IsCompleted:   true,
				CompletedAt:   ptrTime(time.Now().UTC()),
				CreatedBy:     req.ChangedBy,
			}).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
			return
		}

		order.Status = status
		c.JSON(http.StatusOK, order)
	}
}

type milestoneRequest struct {
	Milestone   string  `json:"milestone" binding:"required"`
	Description *string `json:"description"`
	IsCompleted bool    `json:"is_completed"`
	CreatedBy   *string `json:"created_by"`
}

// AddMilestoneHandler appends a timeline entry without touching the status.
func AddMilestoneHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req milestoneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var order models.CustomOrder
		if err := db.First(&order, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Custom order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch custom order"})
			return
		}

		milestone := models.CustomOrderMilestone{
			CustomOrderID: order.ID,
			Milestone:     req.Milestone,
			Description:   req.Description,
			IsCompleted:   req.IsCompleted,
			CreatedBy:     req.CreatedBy,
		}
		if req.IsCompleted {
			milestone.CompletedAt = ptrTime(time.Now().UTC())
		}

		if err := db.Create(&milestone).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add milestone"})
			return
		}
		c.JSON(http.StatusCreated, milestone)
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
