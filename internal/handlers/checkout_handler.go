package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"wuroud-pos/internal/billing"
	"wuroud-pos/internal/cache"
	"wuroud-pos/internal/database"
	"wuroud-pos/internal/models"
	"wuroud-pos/internal/receipt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckoutRequest is what the billing screen sends on "Generate Bill".
// Only IDs and quantities are taken from it; prices come from the catalog.
type CheckoutRequest struct {
	Items []CheckoutItem `json:"items"`
}

// CheckoutItem is one requested line.
type CheckoutItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// mergeCheckoutItems collapses repeated lines for the same SKU into one,
// keeping the first occurrence's position, the way the billing screen's
// "Add to Bill" bumps the quantity of a product already on the bill.
func mergeCheckoutItems(items []CheckoutItem) []CheckoutItem {
	index := make(map[uint]int)
	merged := make([]CheckoutItem, 0, len(items))
	for _, item := range items {
		if i, seen := index[item.ProductID]; seen {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// CheckoutHandler runs the sale-completion flow and issues bill numbers.
type CheckoutHandler struct {
	Ledger *billing.StockLedger
	Sale   *billing.SaleCompletion
	Seq    *billing.Sequence
	Agg    *billing.SalesAggregator
	Shop   receipt.ShopInfo
	Log    *zap.Logger
}

// ProcessCheckout validates the cart against the ledger, commits the sale,
// and only then issues the bill number. A rejected sale never burns a number.
func (h *CheckoutHandler) ProcessCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// 1. Rebuild the cart from the catalog: snapshot name, price and packet
	// shape server-side instead of trusting the UI's copies. Duplicate lines
	// are merged first so the ledger sees each SKU's full demand at once
	var cart []billing.CartLine
	for _, item := range mergeCheckoutItems(req.Items) {
		if item.Quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be at least 1"})
			return
		}
		var product models.Product
		if err := database.DB.First(&product, item.ProductID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found", "product_id": item.ProductID})
			return
		}
		cart = append(cart, billing.CartLine{
			ProductID:  product.ID,
			Name:       product.Name,
			UnitPrice:  product.Price,
			Quantity:   item.Quantity,
			IsPacket:   product.IsPacket,
			PacketSize: product.PacketSize,
		})
	}

	actor := c.GetString("username")

	// 2. Run the state machine: validate everything, then commit
	emitted, err := h.Sale.Complete(c.Request.Context(), cart, actor)
	if err != nil {
		var shortfall *billing.InsufficientStockError
		switch {
		case errors.Is(err, billing.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "No items in bill",
				"reason": "empty_cart",
			})
		case errors.As(err, &shortfall):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     shortfall.Error(),
				"reason":    "insufficient_stock",
				"product":   shortfall.ProductName,
				"available": shortfall.Available,
				"requested": shortfall.Requested,
			})
		default:
			h.Log.Error("checkout failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete sale"})
		}
		return
	}

	// 3. Commit succeeded, now the bill number
	billNo, err := h.Seq.Issue(c.Request.Context())
	if err != nil {
		// The sale is already committed; report the bill without a number
		// rather than pretending the sale failed
		h.Log.Error("bill number issue failed after commit", zap.Error(err))
		billNo = ""
	}

	// 4. The dashboard report is stale now
	cache.InvalidateReport(c.Request.Context(), cache.SalesReportKey)

	bill := receipt.Bill{
		No:       billNo,
		IssuedAt: time.Now(),
		Shop:     h.Shop,
	}
	var total float64
	for _, line := range cart {
		bill.Lines = append(bill.Lines, receipt.Line{Name: line.Name, Qty: line.Quantity, UnitPrice: line.UnitPrice})
		total += line.UnitPrice * float64(line.Quantity)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Sale successful!",
		"bill_no":           billNo,
		"total":             total,
		"transaction_count": len(emitted),
		"bill":              bill,
	})
}

// ReverseSale undoes one sold unit by hand: the transaction row is deleted
// and its stock comes back (packet reversals also restore the base units).
func (h *CheckoutHandler) ReverseSale(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction ID"})
		return
	}

	var tx models.SaleTransaction
	if err := database.DB.First(&tx, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}

	if err := database.DB.Delete(&models.SaleTransaction{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete transaction"})
		return
	}

	// Restore the unit. If the product vanished from the catalog we restore
	// only what the transaction itself can describe.
	line := billing.CartLine{ProductID: tx.ProductID, Name: tx.ProductName, Quantity: 1}
	var product models.Product
	if err := database.DB.First(&product, tx.ProductID).Error; err == nil {
		line.IsPacket = product.IsPacket
		line.PacketSize = product.PacketSize
	}
	if err := h.Ledger.Restore(c.Request.Context(), line); err != nil {
		h.Log.Error("stock restore failed after reversal", zap.Uint("transaction_id", tx.ID), zap.Error(err))
	}

	h.Agg.RemoveTransaction(tx.ID)
	cache.InvalidateReport(c.Request.Context(), cache.SalesReportKey)

	c.JSON(http.StatusOK, gin.H{
		"message": "Sale reversed",
		"product": tx.ProductName,
		"stock":   h.Ledger.GetStock(tx.ProductID),
	})
}
