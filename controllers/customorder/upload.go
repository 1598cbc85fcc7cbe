package customOrderControllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/models"
	"gorm.io/gorm"
)

const maxImageBytes = 10 << 20 // 10 MB

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadImageHandler saves an inspiration image to local disk and attaches it
// to the intake. Files land under uploadDir and are served from publicURL.
func UploadImageHandler(db *gorm.DB, uploadDir, publicURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var order models.CustomOrder
		if err := db.First(&order, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Custom order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch custom order"})
			return
		}

		file, fileHeader, err := c.Request.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No image uploaded"})
			return
		}
		defer file.Close()

		if fileHeader.Size > maxImageBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Image exceeds the 10 MB limit"})
			return
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !allowedImageExts[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only JPEG, PNG and WebP images are allowed"})
			return
		}

		dir := filepath.Join(uploadDir, "custom-orders")
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload folder"})
			return
		}

		baseName := strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
		baseName = strings.ReplaceAll(baseName, " ", "_")
		newFileName := fmt.Sprintf("%d_%d_%s%s", order.ID, time.Now().Unix(), baseName, ext)
		savePath := filepath.Join(dir, newFileName)

		if err := c.SaveUploadedFile(fileHeader, savePath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
			return
		}

		var count int64
		db.Model(&models.CustomOrderImage{}).Where("custom_order_id = ?", order.ID).Count(&count)

		image := models.CustomOrderImage{
			CustomOrderID: order.ID,
			ImageURL:      fmt.Sprintf("%s/uploads/custom-orders/%s", strings.TrimRight(publicURL, "/"), newFileName),
			UploadOrder:   int(count),
		}
		if caption := c.PostForm("caption"); caption != "" {
			image.Caption = &caption
		}

		if err := db.Create(&image).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record image"})
			return
		}

		c.JSON(http.StatusCreated, image)
	}
}
