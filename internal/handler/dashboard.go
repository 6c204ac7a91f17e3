package handler

import (
	"net/http"
	"time"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/pkg/database"

	"github.com/gin-gonic/gin"
)

// DashboardHandler aggregates the back-office landing-page numbers.
type DashboardHandler struct{}

// startOfDay returns midnight in t's own timezone; truncating to 24h would
// give UTC midnight instead of the store's day boundary.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	today := startOfDay(time.Now())

	var todayRevenue float64
	database.DB.Model(&models.Order{}).
		Where("created_at >= ? AND status != ?", today, models.OrderCancelled).
		Select("COALESCE(SUM(total), 0)").Scan(&todayRevenue)

	var todayOrders int64
	database.DB.Model(&models.Order{}).Where("created_at >= ?", today).Count(&todayOrders)

	statusCounts := map[string]int64{}
	for _, status := range []string{
		models.OrderPending, models.OrderProcessing, models.OrderShipped,
		models.OrderDelivered, models.OrderCancelled,
	} {
		var n int64
		database.DB.Model(&models.Order{}).Where("status = ?", status).Count(&n)
		statusCounts[status] = n
	}

	var lowStock int64
	database.DB.Model(&models.Product{}).
		Where("stock <= ? AND status = ?", 5, models.ProductActive).Count(&lowStock)

	var newCustomers int64
	database.DB.Model(&models.Customer{}).Where("created_at >= ?", today).Count(&newCustomers)

	var pendingReviews int64
	database.DB.Model(&models.Review{}).Where("status = ?", models.ReviewPending).Count(&pendingReviews)

	var openReturns int64
	database.DB.Model(&models.ReturnRequest{}).
		Where("status IN ?", []string{models.ReturnPending, models.ReturnApproved}).Count(&openReturns)

	c.JSON(http.StatusOK, gin.H{
		"today_revenue":    todayRevenue,
		"today_orders":     todayOrders,
		"orders_by_status": statusCounts,
		"low_stock_count":  lowStock,
		"new_customers":    newCustomers,
		"pending_reviews":  pendingReviews,
		"open_returns":     openReturns,
	})
}

// GetRevenueChart returns daily revenue for the last N days (default 7).
func (h *DashboardHandler) GetRevenueChart(c *gin.Context) {
	days := 7
	if c.Query("days") == "30" {
		days = 30
	}

	type point struct {
		Date    string  `json:"date"`
		Revenue float64 `json:"revenue"`
		Orders  int64   `json:"orders"`
	}

	points := make([]point, 0, days)
	now := startOfDay(time.Now())
	for i := days - 1; i >= 0; i-- {
		dayStart := now.AddDate(0, 0, -i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		var revenue float64
		database.DB.Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ? AND status != ?", dayStart, dayEnd, models.OrderCancelled).
			Select("COALESCE(SUM(total), 0)").Scan(&revenue)

		var orders int64
		database.DB.Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).Count(&orders)

		points = append(points, point{
			Date:    dayStart.Format("2006-01-02"),
			Revenue: revenue,
			Orders:  orders,
		})
	}

	c.JSON(http.StatusOK, points)
}

// GetTopProducts lists best sellers by units sold.
func (h *DashboardHandler) GetTopProducts(c *gin.Context) {
	type row struct {
		ProductID uint    `json:"product_id"`
		Name      string  `json:"name"`
		Units     int64   `json:"units"`
		Revenue   float64 `json:"revenue"`
	}

	var rows []row
	if err := database.DB.Model(&models.OrderItem{}).
		Select("order_items.product_id, order_items.product_name as name, SUM(order_items.quantity) as units, SUM(order_items.unit_price * order_items.quantity) as revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status != ?", models.OrderCancelled).
		Group("order_items.product_id, order_items.product_name").
		Order("units desc").Limit(5).Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top products"})
		return
	}

	c.JSON(http.StatusOK, rows)
}
