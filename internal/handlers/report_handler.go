package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"wuroud-pos/internal/billing"
	"wuroud-pos/internal/cache"
	"wuroud-pos/internal/database"
	"wuroud-pos/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReportData is the dashboard payload
type ReportData struct {
	TodayRevenue float64                  `json:"today_revenue"`
	WeekRevenue  float64                  `json:"week_revenue"`  // trailing 7 days
	MonthRevenue float64                  `json:"month_revenue"` // trailing 30 days
	TotalUnits   int64                    `json:"total_units"`
	TopSelling   []billing.ProductCount   `json:"top_selling"`
	RecentSales  []models.SaleTransaction `json:"recent_sales"`
}

// ReportHandler serves the dashboard and valuation reports.
type ReportHandler struct {
	Agg    *billing.SalesAggregator
	Stores *database.Stores
	Log    *zap.Logger
}

// GetSalesReport - GET /api/reports
// Served from the cache for a few seconds; the aggregator view trails a
// checkout by design anyway.
func (h *ReportHandler) GetSalesReport(c *gin.Context) {
	ctx := c.Request.Context()

	if payload := cache.GetReport(ctx, cache.SalesReportKey); payload != "" {
		c.Data(http.StatusOK, "application/json", []byte(payload))
		return
	}

	now := time.Now()
	data := ReportData{
		TodayRevenue: h.Agg.DayTotal(now),
		WeekRevenue:  h.Agg.RollingTotal(7),
		MonthRevenue: h.Agg.RollingTotal(30),
		TopSelling:   h.Agg.TopSold(now.AddDate(0, 0, -29), 5),
	}

	count, err := h.Stores.TransactionCount(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count sales"})
		return
	}
	data.TotalUnits = count

	recent, err := h.Stores.RecentTransactions(ctx, 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent sales"})
		return
	}
	data.RecentSales = recent

	if payload, err := json.Marshal(data); err == nil {
		cache.SetReport(ctx, cache.SalesReportKey, string(payload), cache.SalesReportTTL)
	}

	c.JSON(http.StatusOK, data)
}

// --- DATA STRUCTURES FOR VALUATION REPORT ---

// ValuationItem represents a single row in the valuation table
type ValuationItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Value     float64 `json:"value"`
}

// CategoryGroup represents one category's table
type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     float64         `json:"subtotal"`
}

// ValuationResponse is the final payload
type ValuationResponse struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal float64         `json:"grand_total"`
}

// GetStockValuation - GET /api/reports/valuation
// The total monetary value of everything on the shelves, grouped by category.
func (h *ReportHandler) GetStockValuation(c *gin.Context) {
	var products []models.Product
	if err := database.DB.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory"})
		return
	}

	var grandTotal float64
	groupedMap := make(map[string]*CategoryGroup)

	for _, p := range products {
		catName := p.Category
		if catName == "" {
			catName = "Uncategorized"
		}
		if _, exists := groupedMap[catName]; !exists {
			groupedMap[catName] = &CategoryGroup{CategoryName: catName}
		}

		itemValue := float64(p.StockQuantity) * p.Price
		groupedMap[catName].Items = append(groupedMap[catName].Items, ValuationItem{
			Name:      p.Name,
			Quantity:  p.StockQuantity,
			UnitPrice: p.Price,
			Value:     itemValue,
		})
		groupedMap[catName].Subtotal += itemValue
		grandTotal += itemValue
	}

	var response ValuationResponse
	response.GrandTotal = grandTotal
	for _, group := range groupedMap {
		response.Categories = append(response.Categories, *group)
	}

	c.JSON(http.StatusOK, response)
}

// GetZakatReport - GET /api/reports/zakat
// Zakat-ul-Tijarah: 2.5% of stock value plus cash and receivables, minus
// short-term debts. The adjustments come in as query params:
// ?cash= &receivables= &short_term_debts=
func (h *ReportHandler) GetZakatReport(c *gin.Context) {
	var products []models.Product
	if err := database.DB.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory"})
		return
	}

	var stockValue float64
	for _, p := range products {
		stockValue += float64(p.StockQuantity) * p.Price
	}

	cash := queryFloat(c, "cash")
	receivables := queryFloat(c, "receivables")
	shortTermDebts := queryFloat(c, "short_term_debts")

	zakatable := stockValue + cash + receivables - shortTermDebts
	var zakatDue float64
	if zakatable > 0 {
		zakatDue = zakatable * 0.025
	}

	c.JSON(http.StatusOK, gin.H{
		"stock_value":      stockValue,
		"cash":             cash,
		"receivables":      receivables,
		"short_term_debts": shortTermDebts,
		"zakatable_amount": zakatable,
		"zakat_due":        zakatDue,
		"rate":             0.025,
	})
}

func queryFloat(c *gin.Context, key string) float64 {
	v, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
