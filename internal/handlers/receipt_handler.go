package handlers

import (
	"net/http"
	"time"

	"wuroud-pos/internal/receipt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReceiptRequest carries a committed bill back for rendering. The billing
// screen posts the "bill" object it got from checkout, so a receipt can be
// re-rendered any time without touching stock or the bill-number sequence.
type ReceiptRequest struct {
	BillNo      string         `json:"bill_no"`
	IssuedAt    time.Time      `json:"issued_at"`
	PaymentMode string         `json:"payment_mode"`
	Phone       string         `json:"phone"` // WhatsApp target, optional
	Lines       []receipt.Line `json:"lines"`
}

// ReceiptHandler renders committed bills as PDF, text or a WhatsApp link.
type ReceiptHandler struct {
	Shop receipt.ShopInfo
	Log  *zap.Logger
}

func (h *ReceiptHandler) bill(req ReceiptRequest) receipt.Bill {
	issuedAt := req.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	return receipt.Bill{
		No:          req.BillNo,
		IssuedAt:    issuedAt,
		PaymentMode: req.PaymentMode,
		Lines:       req.Lines,
		Shop:        h.Shop,
	}
}

// ReceiptPDF - POST /api/receipt/pdf
func (h *ReceiptHandler) ReceiptPDF(c *gin.Context) {
	var req ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No items in bill"})
		return
	}

	data, err := receipt.PDF(h.bill(req))
	if err != nil {
		h.Log.Error("receipt pdf failed", zap.String("bill_no", req.BillNo), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render receipt"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+h.Shop.Name+`-bill-`+req.BillNo+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// ReceiptText - POST /api/receipt/print
// A plain slip for the thermal printer.
func (h *ReceiptHandler) ReceiptText(c *gin.Context) {
	var req ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No items in bill"})
		return
	}

	c.String(http.StatusOK, receipt.PrintableText(h.bill(req)))
}

// ReceiptWhatsApp - POST /api/receipt/whatsapp
// Returns the wa.me deep link the UI opens in a new tab.
func (h *ReceiptHandler) ReceiptWhatsApp(c *gin.Context) {
	var req ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No items in bill"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url": receipt.WhatsAppLink(req.Phone, h.bill(req)),
	})
}
