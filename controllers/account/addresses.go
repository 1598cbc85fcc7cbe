package accountControllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/auth"
	"github.com/jyush98/jason-co-ecom/models"
	"gorm.io/gorm"
)

type addressRequest struct {
	Label      string  `json:"label" binding:"required"`
	FirstName  string  `json:"first_name" binding:"required"`
	LastName   string  `json:"last_name" binding:"required"`
	Company    *string `json:"company"`
	Phone      *string `json:"phone"`
	Line1      string  `json:"line1" binding:"required"`
	Line2      *string `json:"line2"`
	City       string  `json:"city" binding:"required"`
	State      string  `json:"state" binding:"required"`
	PostalCode string  `json:"postal_code" binding:"required"`
	Country    string  `json:"country"`
	IsDefault  bool    `json:"is_default"`
	IsBilling  *bool   `json:"is_billing"`
	IsShipping *bool   `json:"is_shipping"`
}

func (r *addressRequest) apply(addr *models.UserAddress) {
	addr.Label = r.Label
	addr.FirstName = r.FirstName
	addr.LastName = r.LastName
	addr.Company = r.Company
	addr.Phone = r.Phone
	addr.Line1 = r.Line1
	addr.Line2 = r.Line2
	addr.City = r.City
	addr.State = r.State
	addr.PostalCode = r.PostalCode
	addr.Country = strings.ToUpper(r.Country)
	if addr.Country == "" {
		addr.Country = "US"
	}
	addr.IsBilling = true
	if r.IsBilling != nil {
		addr.IsBilling = *r.IsBilling
	}
	addr.IsShipping = true
	if r.IsShipping != nil {
		addr.IsShipping = *r.IsShipping
	}
}

// ListAddressesHandler returns the caller's address book, default entry
// first.
func ListAddressesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		var addresses []models.UserAddress
		if err := db.Where("user_id = ?", user.ID).
			Order("is_default DESC, created_at ASC").
			Find(&addresses).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch addresses"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"addresses": addresses, "count": len(addresses)})
	}
}

// CreateAddressHandler saves a new address-book entry. The first entry
// becomes the default automatically; a duplicate label is rejected.
func CreateAddressHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		addr := models.UserAddress{UserID: user.ID}
		req.apply(&addr)

		err = db.Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.UserAddress{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
				return err
			}
			addr.IsDefault = req.IsDefault || count == 0
			if addr.IsDefault && count > 0 {
				if err := tx.Model(&models.UserAddress{}).
					Where("user_id = ?", user.ID).
					Update("is_default", false).Error; err != nil {
					return err
				}
			}
			return tx.Create(&addr).Error
		})
		if err != nil {
			if isDuplicateLabel(err) {
				c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("An address labeled %q already exists", req.Label)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save address"})
			return
		}
		c.JSON(http.StatusCreated, addr)
	}
}

// UpdateAddressHandler rewrites an existing entry in place.
func UpdateAddressHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		addr, ok := ownedAddress(c, db, user.ID)
		if !ok {
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.apply(addr)

		if err := db.Save(addr).Error; err != nil {
			if isDuplicateLabel(err) {
				c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("An address labeled %q already exists", req.Label)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update address"})
			return
		}
		c.JSON(http.StatusOK, addr)
	}
}

// SetDefaultAddressHandler moves the default flag to the given entry.
func SetDefaultAddressHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		addr, ok := ownedAddress(c, db, user.ID)
		if !ok {
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.UserAddress{}).
				Where("user_id = ?", user.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
			return tx.Model(addr).Update("is_default", true).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set default address"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": addr.ID, "is_default": true})
	}
}

// DeleteAddressHandler removes an entry. When the default goes away, the
// oldest remaining entry takes over.
func DeleteAddressHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		addr, ok := ownedAddress(c, db, user.ID)
		if !ok {
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(addr).Error; err != nil {
				return err
			}
			if !addr.IsDefault {
				return nil
			}
			var next models.UserAddress
			err := tx.Where("user_id = ?", user.ID).Order("created_at ASC").First(&next).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			return tx.Model(&next).Update("is_default", true).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete address"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// ownedAddress loads the :id address scoped to the caller, writing the error
// response itself when it cannot.
func ownedAddress(c *gin.Context, db *gorm.DB, userID uint) (*models.UserAddress, bool) {
	var id uint
	if _, err := fmt.Sscanf(c.Param("id"), "%d", &id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address id"})
		return nil, false
	}

	var addr models.UserAddress
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch address"})
		return nil, false
	}
	return &addr, true
}

func isDuplicateLabel(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "label") &&
		(strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate"))
}
