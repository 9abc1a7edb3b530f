package models

import (
	"time"
)

// User - The person behind the password gate
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'staff'
	CreatedAt    time.Time `json:"created_at"`
}

// Product - The Inventory (one SKU)
// A packet is a bundled SKU: selling one packet also consumes PacketSize
// units of the base SKU that shares the same Name.
type Product struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	StockQuantity int     `json:"stock_quantity"`
	ImageURL      string  `json:"image_url"`
	IsPacket      bool    `json:"is_packet"`
	PacketSize    int     `json:"packet_size"`
}

// SaleTransaction - One row per unit sold
// A cart line of quantity N produces N rows; a packet sale produces one row
// per packet, priced at the packet's own price.
type SaleTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProductID   uint      `json:"product_id"`
	ProductName string    `json:"product_name"` // Snapshot at sale time
	UnitPrice   float64   `json:"unit_price"`   // Snapshot at sale time
	Timestamp   time.Time `json:"timestamp"`
	Date        string    `gorm:"index;size:10" json:"date"` // Local calendar day, YYYY-MM-DD
	Actor       string    `json:"actor"`
}

// InvoiceSequence - The single persisted bill-number token (e.g. "AA1")
type InvoiceSequence struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Token string `gorm:"size:20" json:"token"`
}

// DailyTotal - Compacted revenue for one calendar day
// Written when old per-unit transactions are folded away by the nightly job.
type DailyTotal struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	Date    string  `gorm:"uniqueIndex;size:10" json:"date"`
	Revenue float64 `json:"revenue"`
}
