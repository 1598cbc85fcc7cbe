package adminControllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/models"
	"gorm.io/gorm"
)

// revenueStatuses are the order states that count toward revenue. Cancelled
// and failed orders never do.
var revenueStatuses = []models.OrderStatus{
	models.OrderStatusConfirmed,
	models.OrderStatusProcessing,
	models.OrderStatusShipped,
	models.OrderStatusDelivered,
}

// DashboardHandler aggregates the numbers the admin dashboard shows: revenue,
// order counts by status, average order value and low-stock products.
func DashboardHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		days := 30
		if d := c.Query("days"); d == "7" || d == "90" || d == "365" {
			switch d {
			case "7":
				days = 7
			case "90":
				days = 90
			case "365":
				days = 365
			}
		}
		since := time.Now().UTC().AddDate(0, 0, -days)

		var revenue struct {
			TotalCents int64
			Count      int64
		}
		err := db.Model(&models.Order{}).
			Select("COALESCE(SUM(total_cents), 0) AS total_cents, COUNT(*) AS count").
			Where("status IN ? AND created_at >= ?", revenueStatuses, since).
			Scan(&revenue).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute revenue"})
			return
		}

		var avgCents int64
		if revenue.Count > 0 {
			avgCents = revenue.TotalCents / revenue.Count
		}

		type statusCount struct {
			Status models.OrderStatus `json:"status"`
			Count  int64              `json:"count"`
		}
		var byStatus []statusCount
		err = db.Model(&models.Order{}).
			Select("status, COUNT(*) AS count").
			Where("created_at >= ?", since).
			Group("status").
			Scan(&byStatus).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
			return
		}

		type topProduct struct {
			ProductID   uint   `json:"product_id"`
			ProductName string `json:"product_name"`
			UnitsSold   int64  `json:"units_sold"`
			SalesCents  int64  `json:"sales_cents"`
		}
		var topProducts []topProduct
		err = db.Model(&models.OrderItem{}).
			Select("order_items.product_id, order_items.product_name, SUM(order_items.quantity) AS units_sold, SUM(order_items.line_total_cents) AS sales_cents").
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("orders.status IN ? AND orders.created_at >= ?", revenueStatuses, since).
			Group("order_items.product_id, order_items.product_name").
			Order("sales_cents DESC").
			Limit(10).
			Scan(&topProducts).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rank products"})
			return
		}

		var lowStock []models.Product
		err = db.Where("track_inventory = ? AND inventory_count <= low_stock_threshold AND status = ?",
			true, models.ProductStatusActive).
			Order("inventory_count ASC").
			Limit(20).
			Find(&lowStock).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch low stock products"})
			return
		}

		var customerCount int64
		if err := db.Model(&models.User{}).Count(&customerCount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count customers"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"period_days":             days,
			"revenue_cents":           revenue.TotalCents,
			"order_count":             revenue.Count,
			"average_order_cents":     avgCents,
			"orders_by_status":        byStatus,
			"top_products":            topProducts,
			"low_stock_products":      lowStock,
			"total_customers":         customerCount,
		})
	}
}

// SearchOrdersHandler is the admin order search, matching order number or
// customer email, with status filtering and pagination.
func SearchOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.Order{}).Preload("Items")

		if q := c.Query("q"); q != "" {
			like := "%" + q + "%"
			query = query.Where("order_number LIKE ? OR customer_email LIKE ?", like, like)
		}
		if status := c.Query("status"); status != "" {
			parsed, err := models.ParseOrderStatus(status)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			query = query.Where("status = ?", parsed)
		}
		if from := c.Query("from"); from != "" {
			query = query.Where("created_at >= ?", from)
		}
		if to := c.Query("to"); to != "" {
			query = query.Where("created_at <= ?", to)
		}

		var orders []models.Order
		if err := query.Order("created_at DESC").Limit(100).Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search orders"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
	}
}
