package billing

import (
	"context"
	"fmt"
	"sync"

	"wuroud-pos/internal/models"

	"go.uber.org/zap"
)

// CartLine is one entry of the bill being built, with the price snapshotted
// at add-time. Quantities are re-checked against the ledger at completion;
// nothing from the UI is trusted.
type CartLine struct {
	ProductID  uint    `json:"product_id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int     `json:"quantity"`
	IsPacket   bool    `json:"is_packet"`
	PacketSize int     `json:"packet_size"`
}

// StockWriter persists a SKU's new quantity-on-hand after the ledger changes it.
type StockWriter interface {
	PersistStock(ctx context.Context, productID uint, quantity int) error
}

// StockLedger is the authoritative quantity-on-hand per SKU.
//
// Packet SKUs are coupled to a base SKU resolved once at load time: the
// non-packet product sharing the same name. Selling a packet consumes both
// the packet's own stock and PacketSize base units.
type StockLedger struct {
	mu         sync.Mutex
	stocks     map[uint]int
	packetSize map[uint]int    // packet id -> bundle size
	baseByName map[string]uint // product name -> non-packet SKU id
	writer     StockWriter
	log        *zap.Logger
}

// NewStockLedger builds the ledger from the loaded catalog.
func NewStockLedger(products []models.Product, writer StockWriter, log *zap.Logger) *StockLedger {
	if log == nil {
		log = zap.NewNop()
	}
	l := &StockLedger{
		stocks:     make(map[uint]int),
		packetSize: make(map[uint]int),
		baseByName: make(map[string]uint),
		writer:     writer,
		log:        log,
	}
	for _, p := range products {
		l.track(p)
	}
	return l
}

// Track registers a new or updated product with the ledger.
func (l *StockLedger) Track(p models.Product) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.track(p)
}

func (l *StockLedger) track(p models.Product) {
	l.stocks[p.ID] = p.StockQuantity
	// A rename or a flip to packet must not leave the old name resolving here
	for name, id := range l.baseByName {
		if id == p.ID {
			delete(l.baseByName, name)
		}
	}
	if p.IsPacket {
		l.packetSize[p.ID] = p.PacketSize
	} else {
		delete(l.packetSize, p.ID)
		l.baseByName[p.Name] = p.ID
	}
}

// Forget drops a removed product from the ledger.
func (l *StockLedger) Forget(id uint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.stocks, id)
	delete(l.packetSize, id)
	for name, baseID := range l.baseByName {
		if baseID == id {
			delete(l.baseByName, name)
		}
	}
}

// GetStock returns the quantity on hand; an unknown SKU has stock 0.
func (l *StockLedger) GetStock(id uint) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stocks[id]
}

// Increase adds qty units and persists the new quantity.
func (l *StockLedger) Increase(ctx context.Context, id uint, qty int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setStock(ctx, id, l.stocks[id]+qty)
}

// Decrease removes qty units, clamping at zero, and persists the new quantity.
// Stock never goes negative no matter how large the decrement.
func (l *StockLedger) Decrease(ctx context.Context, id uint, qty int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := l.stocks[id] - qty
	if next < 0 {
		next = 0
	}
	return l.setStock(ctx, id, next)
}

func (l *StockLedger) setStock(ctx context.Context, id uint, qty int) error {
	l.stocks[id] = qty
	if err := l.writer.PersistStock(ctx, id, qty); err != nil {
		return fmt.Errorf("persist stock for product %d: %w", id, err)
	}
	return nil
}

// Available returns how many units of this line could actually be sold.
// For a packet that is bounded by both the packet's own stock and how many
// full bundles the base SKU can cover; no resolvable base SKU means none.
func (l *StockLedger) Available(line CartLine) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	own := l.stocks[line.ProductID]
	if !line.IsPacket {
		return own
	}
	size := line.PacketSize
	if size <= 0 {
		size = l.packetSize[line.ProductID]
	}
	if size <= 0 {
		return 0
	}
	baseID, ok := l.baseByName[line.Name]
	if !ok {
		return 0
	}
	if bundles := l.stocks[baseID] / size; bundles < own {
		return bundles
	}
	return own
}

// CanFulfill reports whether the ledger can cover the whole line.
func (l *StockLedger) CanFulfill(line CartLine) bool {
	return l.Available(line) >= line.Quantity
}

// Consume takes the line out of stock: the SKU's own stock drops by the
// quantity, and for packets the base SKU drops by PacketSize times that.
// The two decrements are two separate writes; the caller sequences them.
func (l *StockLedger) Consume(ctx context.Context, line CartLine) error {
	if err := l.Decrease(ctx, line.ProductID, line.Quantity); err != nil {
		return err
	}
	if !line.IsPacket {
		return nil
	}
	baseID, size, ok := l.baseFor(line)
	if !ok {
		return fmt.Errorf("no base product named %q for packet %d", line.Name, line.ProductID)
	}
	return l.Decrease(ctx, baseID, size*line.Quantity)
}

// Restore puts the line back, reversing a Consume of the same shape.
func (l *StockLedger) Restore(ctx context.Context, line CartLine) error {
	if err := l.Increase(ctx, line.ProductID, line.Quantity); err != nil {
		return err
	}
	if !line.IsPacket {
		return nil
	}
	baseID, size, ok := l.baseFor(line)
	if !ok {
		// The base product is gone; restore the packet and move on
		l.log.Warn("restoring packet without base product", zap.Uint("product_id", line.ProductID))
		return nil
	}
	return l.Increase(ctx, baseID, size*line.Quantity)
}

func (l *StockLedger) baseFor(line CartLine) (uint, int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	size := line.PacketSize
	if size <= 0 {
		size = l.packetSize[line.ProductID]
	}
	baseID, ok := l.baseByName[line.Name]
	if !ok || size <= 0 {
		return 0, 0, false
	}
	return baseID, size, true
}
