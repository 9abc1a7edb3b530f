// Package receipt renders a committed bill in the three shapes the shop
// hands to customers: an A4 PDF, a plain-text slip for the printer, and a
// WhatsApp share link.
package receipt

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"
)

// ShopInfo is the header block printed on every bill.
type ShopInfo struct {
	Name  string
	Place string
	Phone string
	GSTIN string
}

// Line is one row of the bill.
type Line struct {
	Name      string  `json:"name"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
}

// Bill is a committed sale ready to be rendered.
type Bill struct {
	No          string    `json:"no"`
	IssuedAt    time.Time `json:"issued_at"`
	PaymentMode string    `json:"payment_mode"`
	Lines       []Line    `json:"lines"`
	Shop        ShopInfo  `json:"-"`
}

// SubTotal is the amount due across all lines.
func (b Bill) SubTotal() float64 {
	var total float64
	for _, l := range b.Lines {
		total += l.UnitPrice * float64(l.Qty)
	}
	return total
}

// TotalQty is the unit count across all lines.
func (b Bill) TotalQty() int {
	var qty int
	for _, l := range b.Lines {
		qty += l.Qty
	}
	return qty
}

// PDF renders the retail invoice: centered shop header, Item/Qty/Amt table,
// Sub Total, TOTAL, cash lines and the E & O E footer.
func PDF(b Bill) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - 30

	// Header
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(usable, 7, b.Shop.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(usable, 5, b.Shop.Place, "", 1, "C", false, 0, "")
	pdf.CellFormat(usable, 5, "PHONE : "+b.Shop.Phone, "", 1, "C", false, 0, "")
	pdf.CellFormat(usable, 5, "GSTIN : "+b.Shop.GSTIN, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(usable, 8, "Retail Invoice", "", 1, "C", false, 0, "")

	// Bill meta
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(usable, 6, fmt.Sprintf("Date : %s", b.IssuedAt.Format("02/01/2006, 03:04 PM")), "", 1, "L", false, 0, "")
	mode := b.PaymentMode
	if mode == "" {
		mode = "Cash"
	}
	pdf.CellFormat(usable/2, 6, "Bill No: "+b.No, "", 0, "L", false, 0, "")
	pdf.CellFormat(usable/2, 6, "Payment Mode: "+mode, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// Table header
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(usable*0.6, 7, "Item", "TB", 0, "L", false, 0, "")
	pdf.CellFormat(usable*0.15, 7, "Qty", "TB", 0, "C", false, 0, "")
	pdf.CellFormat(usable*0.25, 7, "Amt", "TB", 1, "R", false, 0, "")

	// Table body
	pdf.SetFont("Helvetica", "", 10)
	for _, l := range b.Lines {
		pdf.CellFormat(usable*0.6, 6, l.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(usable*0.15, 6, fmt.Sprintf("%d", l.Qty), "", 0, "C", false, 0, "")
		pdf.CellFormat(usable*0.25, 6, fmt.Sprintf("%.2f", l.UnitPrice*float64(l.Qty)), "", 1, "R", false, 0, "")
	}

	// Sub Total
	subTotal := b.SubTotal()
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(usable*0.6, 7, "Sub Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(usable*0.15, 7, fmt.Sprintf("%d", b.TotalQty()), "T", 0, "C", false, 0, "")
	pdf.CellFormat(usable*0.25, 7, fmt.Sprintf("%.2f", subTotal), "T", 1, "R", false, 0, "")
	pdf.Ln(6)

	// Total and cash lines (no discount, no tax)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(usable*0.6, 7, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(usable*0.4, 7, fmt.Sprintf("Rs %.2f", subTotal), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(usable*0.6, 6, "Cash :", "", 0, "L", false, 0, "")
	pdf.CellFormat(usable*0.4, 6, fmt.Sprintf("Rs %.2f", subTotal), "", 1, "R", false, 0, "")
	pdf.CellFormat(usable*0.6, 6, "Cash tendered:", "", 0, "L", false, 0, "")
	pdf.CellFormat(usable*0.4, 6, fmt.Sprintf("Rs %.2f", subTotal), "", 1, "R", false, 0, "")

	// Footer
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(usable, 5, "E & O E", "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// PrintableText renders the slip for a plain receipt printer.
func PrintableText(b Bill) string {
	var sb strings.Builder
	center := func(s string) {
		pad := (32 - len(s)) / 2
		if pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
		sb.WriteString(s)
		sb.WriteByte('\n')
	}

	center(b.Shop.Name)
	center(b.Shop.Place)
	center("PHONE : " + b.Shop.Phone)
	center("GSTIN : " + b.Shop.GSTIN)
	center("Retail Invoice")
	fmt.Fprintf(&sb, "Date : %s\n", b.IssuedAt.Format("02/01/2006, 03:04 PM"))
	mode := b.PaymentMode
	if mode == "" {
		mode = "Cash"
	}
	fmt.Fprintf(&sb, "Bill No: %s  Payment Mode: %s\n", b.No, mode)
	sb.WriteString(strings.Repeat("-", 32) + "\n")
	fmt.Fprintf(&sb, "%-18s %4s %8s\n", "Item", "Qty", "Amt")
	for _, l := range b.Lines {
		fmt.Fprintf(&sb, "%-18s %4d %8.2f\n", l.Name, l.Qty, l.UnitPrice*float64(l.Qty))
	}
	sb.WriteString(strings.Repeat("-", 32) + "\n")
	fmt.Fprintf(&sb, "%-18s %4d %8.2f\n", "Sub Total", b.TotalQty(), b.SubTotal())
	fmt.Fprintf(&sb, "TOTAL%22s Rs %.2f\n", "", b.SubTotal())
	sb.WriteString("E & O E\n")
	return sb.String()
}

// WhatsAppLink builds the wa.me deep link carrying the bill text.
// An empty phone opens the share picker instead of a chat.
func WhatsAppLink(phone string, b Bill) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("*%s Bill*", b.Shop.Name), "")
	for _, l := range b.Lines {
		lines = append(lines, fmt.Sprintf("%s x%d = Rs %.2f", l.Name, l.Qty, l.UnitPrice*float64(l.Qty)))
	}
	lines = append(lines, "", fmt.Sprintf("Total: Rs %.2f", b.SubTotal()))
	if b.No != "" {
		lines = append(lines, fmt.Sprintf("Bill No: %s", b.No))
	}

	text := url.QueryEscape(strings.Join(lines, "\n"))
	if phone == "" {
		return "https://wa.me/?text=" + text
	}
	return "https://wa.me/" + phone + "?text=" + text
}
