package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wuroud-pos/internal/models"

	"go.uber.org/zap"
)

// ErrEmptyCart is returned when checkout is pressed with nothing on the bill.
var ErrEmptyCart = errors.New("cart is empty")

// InsufficientStockError names the first cart line the ledger cannot cover.
// Validation stops at the first shortfall; nothing is committed.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d requested, %d available", e.ProductName, e.Requested, e.Available)
}

// TransactionSink receives the per-unit sale records of a committed checkout.
type TransactionSink interface {
	AppendTransactions(ctx context.Context, txs []models.SaleTransaction) error
}

type fanOutSink []TransactionSink

func (f fanOutSink) AppendTransactions(ctx context.Context, txs []models.SaleTransaction) error {
	for _, s := range f {
		if err := s.AppendTransactions(ctx, txs); err != nil {
			return err
		}
	}
	return nil
}

// FanOut delivers committed transactions to several sinks in order, typically
// the database first and then the in-memory aggregator.
func FanOut(sinks ...TransactionSink) TransactionSink {
	return fanOutSink(sinks)
}

// DayKey buckets an instant into its local calendar day.
func DayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// SaleCompletion turns a validated cart into committed stock changes and a
// transaction log, exactly once per checkout press.
//
// The flow is validate-then-commit: every line must clear the ledger before
// any stock moves, so a rejected sale leaves the shop exactly as it was.
// Bill-number issuance is deliberately NOT part of this flow; the caller
// issues the number only after Complete succeeds, so an aborted sale never
// burns a bill number.
type SaleCompletion struct {
	ledger *StockLedger
	sink   TransactionSink
	now    func() time.Time
	log    *zap.Logger
}

// NewSaleCompletion wires the checkout flow. A nil clock means time.Now.
func NewSaleCompletion(ledger *StockLedger, sink TransactionSink, now func() time.Time, log *zap.Logger) *SaleCompletion {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SaleCompletion{ledger: ledger, sink: sink, now: now, log: log}
}

// Complete validates the whole cart, then consumes stock and emits one
// SaleTransaction per unit sold. All emitted transactions share one commit
// timestamp. Returns the emitted records on success.
//
// On rejection (ErrEmptyCart or *InsufficientStockError) no state changes.
// A persistence failure mid-commit is logged and surfaced; writes already
// made stay in place (the store offers no cross-write rollback here).
func (s *SaleCompletion) Complete(ctx context.Context, cart []CartLine, actor string) ([]models.SaleTransaction, error) {
	// --- Validating ---
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}
	// Demand is summed per SKU so repeated lines for the same product cannot
	// each validate against the full stock and oversell it together
	requested := make(map[uint]int)
	for _, line := range cart {
		requested[line.ProductID] += line.Quantity
		if available := s.ledger.Available(line); available < requested[line.ProductID] {
			return nil, &InsufficientStockError{
				ProductName: line.Name,
				Available:   available,
				Requested:   requested[line.ProductID],
			}
		}
	}

	// --- Committing ---
	commitAt := s.now()
	day := DayKey(commitAt)
	var emitted []models.SaleTransaction

	for _, line := range cart {
		if err := s.ledger.Consume(ctx, line); err != nil {
			s.log.Error("stock consume failed mid-commit", zap.String("product", line.Name), zap.Error(err))
			return nil, fmt.Errorf("consume %s: %w", line.Name, err)
		}
		for i := 0; i < line.Quantity; i++ {
			emitted = append(emitted, models.SaleTransaction{
				ProductID:   line.ProductID,
				ProductName: line.Name,
				UnitPrice:   line.UnitPrice,
				Timestamp:   commitAt,
				Date:        day,
				Actor:       actor,
			})
		}
	}

	if err := s.sink.AppendTransactions(ctx, emitted); err != nil {
		s.log.Error("transaction log write failed", zap.Int("count", len(emitted)), zap.Error(err))
		return nil, fmt.Errorf("record sale: %w", err)
	}

	s.log.Info("sale committed",
		zap.Int("lines", len(cart)),
		zap.Int("units", len(emitted)),
		zap.String("actor", actor))
	return emitted, nil
}
