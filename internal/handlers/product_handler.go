package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"wuroud-pos/internal/billing"
	"wuroud-pos/internal/database"
	"wuroud-pos/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProductHandler owns the catalog routes and keeps the stock ledger in sync
// with every catalog change.
type ProductHandler struct {
	Ledger *billing.StockLedger
	Log    *zap.Logger
}

// GetProducts lists the catalog, honoring the storefront's filter bar:
// ?q= name search, ?category=, ?min_price=, ?max_price=
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var products []models.Product

	query := database.DB
	if cat := c.Query("category"); cat != "" && cat != "all" {
		query = query.Where("category = ?", cat)
	}
	if min := c.Query("min_price"); min != "" {
		if v, err := strconv.ParseFloat(min, 64); err == nil {
			query = query.Where("price >= ?", v)
		}
	}
	if max := c.Query("max_price"); max != "" {
		if v, err := strconv.ParseFloat(max, 64); err == nil {
			query = query.Where("price <= ?", v)
		}
	}
	if q := c.Query("q"); q != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// AddProduct creates a catalog entry and registers it with the ledger.
func (h *ProductHandler) AddProduct(c *gin.Context) {
	var newProduct models.Product

	// 1. Parse JSON Input
	if err := c.ShouldBindJSON(&newProduct); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if newProduct.Name == "" || newProduct.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Enter valid name & price"})
		return
	}
	if newProduct.IsPacket && newProduct.PacketSize <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A packet needs a positive packet_size"})
		return
	}

	// 2. Save to DB
	if err := database.DB.Create(&newProduct).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	// 3. The ledger tracks it from now on
	h.Ledger.Track(newProduct)

	c.JSON(http.StatusCreated, newProduct)
}

// UpdateProduct applies a partial update (only the fields that were sent).
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	// 1. Get ID from URL (e.g., /products/5)
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Product ID"})
		return
	}

	// 2. Find existing product
	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	// 3. Update fields based on JSON input
	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if !packetUpdateValid(product, updateData) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A packet needs a positive packet_size"})
		return
	}

	// 4. Save updates
	if err := database.DB.Model(&product).Updates(updateData).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	// 5. Keep the ledger's view current (stock or packet fields may have changed)
	h.Ledger.Track(product)

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

// packetUpdateValid applies the partial update to the product's packet fields
// and checks the result would still be consistent. A partial update can flip
// is_packet on without sending packet_size, so the check has to look at the
// merged state, not just the request body.
func packetUpdateValid(product models.Product, updateData map[string]interface{}) bool {
	isPacket := product.IsPacket
	if v, ok := updateData["is_packet"].(bool); ok {
		isPacket = v
	}
	packetSize := product.PacketSize
	// JSON numbers arrive as float64
	if v, ok := updateData["packet_size"].(float64); ok {
		packetSize = int(v)
	}
	return !isPacket || packetSize > 0
}

// DeleteProduct removes a catalog entry and drops it from the ledger.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Product ID"})
		return
	}

	if err := database.DB.Delete(&models.Product{}, id).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not delete product. It might be linked to past sales."})
		return
	}

	h.Ledger.Forget(uint(id))

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// StockAdjustment moves stock up or down outside of a sale (delivery arrived,
// breakage, a recount).
type StockAdjustment struct {
	Change int `json:"change" binding:"required"`
}

// AdjustStock applies a manual stock correction through the ledger so the
// clamp-at-zero rule and persistence both apply.
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Product ID"})
		return
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var adj StockAdjustment
	if err := c.ShouldBindJSON(&adj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if adj.Change >= 0 {
		err = h.Ledger.Increase(c.Request.Context(), uint(id), adj.Change)
	} else {
		err = h.Ledger.Decrease(c.Request.Context(), uint(id), -adj.Change)
	}
	if err != nil {
		h.Log.Error("stock adjustment failed", zap.Int("product_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stock"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": id,
		"stock":      h.Ledger.GetStock(uint(id)),
	})
}
