package adminControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/models"
	"github.com/jyush98/jason-co-ecom/notifications"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// ExportOrdersToExcel streams the order book as an .xlsx download. Money
// columns are formatted dollar strings; raw cents stay in the API.
func ExportOrdersToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.Order{})
		if status := c.Query("status"); status != "" {
			parsed, err := models.ParseOrderStatus(status)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			query = query.Where("status = ?", parsed)
		}

		var orders []models.Order
		if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headers := []string{
			"OrderNumber", "Customer", "Email", "Status", "PaymentStatus",
			"Subtotal", "Tax", "Shipping", "Total", "Currency",
			"Tracking", "CreatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, o := range orders {
			row := sheet.AddRow()

			row.AddCell().SetValue(o.OrderNumber)
			row.AddCell().SetValue(o.CustomerName())
			if o.CustomerEmail != nil {
				row.AddCell().SetValue(*o.CustomerEmail)
			} else {
				row.AddCell().SetValue("")
			}
			row.AddCell().SetValue(string(o.Status))
			row.AddCell().SetValue(string(o.PaymentStatus))
			row.AddCell().SetValue(notifications.FormatCents(o.SubtotalCents))
			row.AddCell().SetValue(notifications.FormatCents(o.TaxCents))
			row.AddCell().SetValue(notifications.FormatCents(o.ShippingCents))
			row.AddCell().SetValue(notifications.FormatCents(o.TotalCents))
			row.AddCell().SetValue(o.Currency)
			if o.TrackingNumber != nil {
				row.AddCell().SetValue(*o.TrackingNumber)
			} else {
				row.AddCell().SetValue("")
			}
			row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
