package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"wuroud-pos/internal/models"
)

type memSink struct {
	txs []models.SaleTransaction
}

func (m *memSink) AppendTransactions(_ context.Context, txs []models.SaleTransaction) error {
	m.txs = append(m.txs, txs...)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCompleteEmptyCart(t *testing.T) {
	ledger := NewStockLedger(nil, newMemStockWriter(), nil)
	sink := &memSink{}
	sale := NewSaleCompletion(ledger, sink, nil, nil)

	_, err := sale.Complete(context.Background(), nil, "")
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
	if len(sink.txs) != 0 {
		t.Errorf("emitted %d transactions on rejection", len(sink.txs))
	}
}

func TestCompleteAllOrNothing(t *testing.T) {
	products := []models.Product{
		{ID: 1, Name: "Soap", Price: 30, StockQuantity: 5},
		{ID: 2, Name: "Sugar", Price: 45, StockQuantity: 1},
	}
	ledger := NewStockLedger(products, newMemStockWriter(), nil)
	sink := &memSink{}
	sale := NewSaleCompletion(ledger, sink, nil, nil)

	cart := []CartLine{
		{ProductID: 1, Name: "Soap", UnitPrice: 30, Quantity: 2},
		{ProductID: 2, Name: "Sugar", UnitPrice: 45, Quantity: 3}, // only 1 left
	}
	_, err := sale.Complete(context.Background(), cart, "")

	var shortfall *InsufficientStockError
	if !errors.As(err, &shortfall) {
		t.Fatalf("err = %v, want *InsufficientStockError", err)
	}
	if shortfall.ProductName != "Sugar" || shortfall.Available != 1 || shortfall.Requested != 3 {
		t.Errorf("shortfall = %+v, want Sugar 1/3", shortfall)
	}

	// Nothing moved: the fulfillable line must not have been consumed
	if got := ledger.GetStock(1); got != 5 {
		t.Errorf("stock of Soap = %d, want 5 untouched", got)
	}
	if got := ledger.GetStock(2); got != 1 {
		t.Errorf("stock of Sugar = %d, want 1 untouched", got)
	}
	if len(sink.txs) != 0 {
		t.Errorf("emitted %d transactions on rejection", len(sink.txs))
	}
}

func TestCompleteDuplicateLinesCannotOversell(t *testing.T) {
	products := []models.Product{
		{ID: 1, Name: "Soap", Price: 30, StockQuantity: 5},
	}
	ledger := NewStockLedger(products, newMemStockWriter(), nil)
	sink := &memSink{}
	sale := NewSaleCompletion(ledger, sink, nil, nil)

	// Two lines for the same SKU, each individually coverable, 6 units in all
	cart := []CartLine{
		{ProductID: 1, Name: "Soap", UnitPrice: 30, Quantity: 3},
		{ProductID: 1, Name: "Soap", UnitPrice: 30, Quantity: 3},
	}
	_, err := sale.Complete(context.Background(), cart, "")

	var shortfall *InsufficientStockError
	if !errors.As(err, &shortfall) {
		t.Fatalf("err = %v, want *InsufficientStockError for combined demand", err)
	}
	if shortfall.Available != 5 || shortfall.Requested != 6 {
		t.Errorf("shortfall = %+v, want 6 requested against 5 available", shortfall)
	}
	if got := ledger.GetStock(1); got != 5 {
		t.Errorf("stock = %d, want 5 untouched", got)
	}
	if len(sink.txs) != 0 {
		t.Errorf("emitted %d transactions on rejection", len(sink.txs))
	}
}

func TestCompleteEmitsOneTransactionPerUnit(t *testing.T) {
	products := []models.Product{
		{ID: 1, Name: "Soap", Price: 30, StockQuantity: 10},
		{ID: 2, Name: "Sugar", Price: 45, StockQuantity: 10},
		{ID: 3, Name: "Salt", Price: 20, StockQuantity: 10},
	}
	ledger := NewStockLedger(products, newMemStockWriter(), nil)
	sink := &memSink{}
	commitAt := time.Date(2026, 8, 30, 18, 45, 0, 0, time.Local)
	sale := NewSaleCompletion(ledger, sink, fixedClock(commitAt), nil)

	cart := []CartLine{
		{ProductID: 1, Name: "Soap", UnitPrice: 30, Quantity: 2},
		{ProductID: 2, Name: "Sugar", UnitPrice: 45, Quantity: 1},
		{ProductID: 3, Name: "Salt", UnitPrice: 20, Quantity: 3},
	}
	emitted, err := sale.Complete(context.Background(), cart, "admin")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(emitted) != 6 {
		t.Fatalf("emitted %d transactions, want 6", len(emitted))
	}
	for _, tx := range emitted {
		if !tx.Timestamp.Equal(commitAt) {
			t.Errorf("transaction timestamp %v differs from commit time %v", tx.Timestamp, commitAt)
		}
		if tx.Date != "2026-08-30" {
			t.Errorf("transaction date = %q, want 2026-08-30", tx.Date)
		}
		if tx.Actor != "admin" {
			t.Errorf("transaction actor = %q, want admin", tx.Actor)
		}
	}
	if len(sink.txs) != 6 {
		t.Errorf("sink received %d transactions, want 6", len(sink.txs))
	}
}

func TestCompletePacketSale(t *testing.T) {
	ledger := NewStockLedger(teaCatalog(10, 5, 4), newMemStockWriter(), nil)
	sink := &memSink{}
	sale := NewSaleCompletion(ledger, sink, nil, nil)

	cart := []CartLine{
		{ProductID: 2, Name: "Tea Powder", UnitPrice: 180, Quantity: 2, IsPacket: true, PacketSize: 4},
	}
	emitted, err := sale.Complete(context.Background(), cart, "")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	// One transaction per packet, not per base unit, at the packet's price
	if len(emitted) != 2 {
		t.Fatalf("emitted %d transactions, want 2", len(emitted))
	}
	for _, tx := range emitted {
		if tx.ProductID != 2 || tx.UnitPrice != 180 {
			t.Errorf("transaction %+v, want packet identity and price", tx)
		}
	}
	if got := ledger.GetStock(1); got != 2 {
		t.Errorf("base stock = %d, want 2", got)
	}
	if got := ledger.GetStock(2); got != 3 {
		t.Errorf("packet stock = %d, want 3", got)
	}
}
