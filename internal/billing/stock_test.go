package billing

import (
	"context"
	"testing"

	"wuroud-pos/internal/models"
)

type memStockWriter struct {
	persisted map[uint]int
}

func newMemStockWriter() *memStockWriter {
	return &memStockWriter{persisted: make(map[uint]int)}
}

func (m *memStockWriter) PersistStock(_ context.Context, productID uint, quantity int) error {
	m.persisted[productID] = quantity
	return nil
}

func teaCatalog(baseStock, packetStock, packetSize int) []models.Product {
	return []models.Product{
		{ID: 1, Name: "Tea Powder", Price: 50, StockQuantity: baseStock},
		{ID: 2, Name: "Tea Powder", Price: 180, StockQuantity: packetStock, IsPacket: true, PacketSize: packetSize},
	}
}

func TestStockNeverNegative(t *testing.T) {
	writer := newMemStockWriter()
	ledger := NewStockLedger([]models.Product{{ID: 1, Name: "Soap", StockQuantity: 3}}, writer, nil)

	decrements := []int{1, 5, 100, 2}
	for _, q := range decrements {
		if err := ledger.Decrease(context.Background(), 1, q); err != nil {
			t.Fatalf("Decrease(%d): %v", q, err)
		}
		if got := ledger.GetStock(1); got < 0 {
			t.Fatalf("stock went negative: %d", got)
		}
	}
	if got := ledger.GetStock(1); got != 0 {
		t.Errorf("stock = %d, want 0", got)
	}
	if writer.persisted[1] != 0 {
		t.Errorf("persisted stock = %d, want 0", writer.persisted[1])
	}
}

func TestGetStockUnknownSKU(t *testing.T) {
	ledger := NewStockLedger(nil, newMemStockWriter(), nil)
	if got := ledger.GetStock(42); got != 0 {
		t.Errorf("GetStock(unknown) = %d, want 0", got)
	}
}

func TestPacketFulfillment(t *testing.T) {
	ledger := NewStockLedger(teaCatalog(10, 5, 4), newMemStockWriter(), nil)
	packetLine := CartLine{ProductID: 2, Name: "Tea Powder", UnitPrice: 180, IsPacket: true, PacketSize: 4}

	// 3 packets need 12 base units but only 10 exist
	packetLine.Quantity = 3
	if ledger.CanFulfill(packetLine) {
		t.Error("CanFulfill(3 packets) = true, want false with 10 base units")
	}

	packetLine.Quantity = 2
	if !ledger.CanFulfill(packetLine) {
		t.Fatal("CanFulfill(2 packets) = false, want true")
	}

	if err := ledger.Consume(context.Background(), packetLine); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if got := ledger.GetStock(1); got != 2 {
		t.Errorf("base stock after consume = %d, want 2", got)
	}
	if got := ledger.GetStock(2); got != 3 {
		t.Errorf("packet stock after consume = %d, want 3", got)
	}
}

func TestPacketWithoutBaseCannotFulfill(t *testing.T) {
	products := []models.Product{
		{ID: 2, Name: "Orphan Packet", Price: 90, StockQuantity: 5, IsPacket: true, PacketSize: 3},
	}
	ledger := NewStockLedger(products, newMemStockWriter(), nil)
	line := CartLine{ProductID: 2, Name: "Orphan Packet", Quantity: 1, IsPacket: true, PacketSize: 3}
	if ledger.CanFulfill(line) {
		t.Error("CanFulfill = true for a packet with no base product")
	}
}

func TestRenamedBaseDropsOldName(t *testing.T) {
	ledger := NewStockLedger(teaCatalog(10, 5, 4), newMemStockWriter(), nil)

	// Base product renamed: packets named "Tea Powder" must stop resolving it
	ledger.Track(models.Product{ID: 1, Name: "Green Tea Powder", Price: 50, StockQuantity: 10})

	line := CartLine{ProductID: 2, Name: "Tea Powder", Quantity: 1, IsPacket: true, PacketSize: 4}
	if ledger.CanFulfill(line) {
		t.Error("CanFulfill = true through a stale name mapping after rename")
	}

	renamed := CartLine{ProductID: 2, Name: "Green Tea Powder", Quantity: 1, IsPacket: true, PacketSize: 4}
	if !ledger.CanFulfill(renamed) {
		t.Error("CanFulfill = false for the new base name")
	}
}

func TestBaseFlippedToPacketLosesMapping(t *testing.T) {
	ledger := NewStockLedger(teaCatalog(10, 5, 4), newMemStockWriter(), nil)

	ledger.Track(models.Product{ID: 1, Name: "Tea Powder", Price: 50, StockQuantity: 10, IsPacket: true, PacketSize: 10})

	line := CartLine{ProductID: 2, Name: "Tea Powder", Quantity: 1, IsPacket: true, PacketSize: 4}
	if ledger.CanFulfill(line) {
		t.Error("CanFulfill = true against a base that is now itself a packet")
	}
}

func TestRestoreReversesConsume(t *testing.T) {
	ledger := NewStockLedger(teaCatalog(10, 5, 4), newMemStockWriter(), nil)
	line := CartLine{ProductID: 2, Name: "Tea Powder", Quantity: 2, IsPacket: true, PacketSize: 4}

	if err := ledger.Consume(context.Background(), line); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if err := ledger.Restore(context.Background(), line); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := ledger.GetStock(1); got != 10 {
		t.Errorf("base stock after restore = %d, want 10", got)
	}
	if got := ledger.GetStock(2); got != 5 {
		t.Errorf("packet stock after restore = %d, want 5", got)
	}
}
