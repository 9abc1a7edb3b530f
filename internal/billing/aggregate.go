package billing

import (
	"context"
	"sort"
	"sync"
	"time"

	"wuroud-pos/internal/models"
)

// ProductCount is one leaderboard row: units sold per product in a period.
type ProductCount struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
}

// SalesAggregator folds the unordered transaction log into per-day totals and
// bestseller rankings.
//
// It is fed through the transaction sink, so its views trail a committed sale
// by a beat; callers must not expect a checkout response and a report read to
// agree instantly.
//
// Detail rows are kept per unit until the nightly job compacts days that are
// no longer "today" into DailyTotal entries (revenue only, detail dropped).
type SalesAggregator struct {
	mu        sync.Mutex
	now       func() time.Time
	detail    []models.SaleTransaction
	totals    map[string]float64 // compacted day -> revenue
	firstSeen map[uint]int       // product id -> insertion rank, for stable tie-breaks
	nextRank  int
}

// NewSalesAggregator creates an empty aggregator. A nil clock means time.Now.
func NewSalesAggregator(now func() time.Time) *SalesAggregator {
	if now == nil {
		now = time.Now
	}
	return &SalesAggregator{
		now:       now,
		totals:    make(map[string]float64),
		firstSeen: make(map[uint]int),
	}
}

// Seed loads previously persisted state at startup: retained detail rows
// (in insertion order, so tie-breaks survive restarts) and compacted days.
func (a *SalesAggregator) Seed(txs []models.SaleTransaction, compacted []models.DailyTotal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, t := range compacted {
		a.totals[t.Date] = t.Revenue
	}
	for _, tx := range txs {
		a.record(tx)
	}
}

// AppendTransactions makes the aggregator a TransactionSink, the subscription
// through which committed sales reach it.
func (a *SalesAggregator) AppendTransactions(_ context.Context, txs []models.SaleTransaction) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, tx := range txs {
		a.record(tx)
	}
	return nil
}

func (a *SalesAggregator) record(tx models.SaleTransaction) {
	a.detail = append(a.detail, tx)
	if _, seen := a.firstSeen[tx.ProductID]; !seen {
		a.firstSeen[tx.ProductID] = a.nextRank
		a.nextRank++
	}
}

// RemoveTransaction drops one detail row after a manual reversal.
// Compacted days are untouched; reversals only reach back as far as the
// retained detail does.
func (a *SalesAggregator) RemoveTransaction(id uint) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, tx := range a.detail {
		if tx.ID == id {
			a.detail = append(a.detail[:i], a.detail[i+1:]...)
			return
		}
	}
}

// DayTotal sums the revenue of one calendar day.
func (a *SalesAggregator) DayTotal(day time.Time) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dayTotal(DayKey(day))
}

func (a *SalesAggregator) dayTotal(key string) float64 {
	total := a.totals[key]
	for _, tx := range a.detail {
		if tx.Date == key {
			total += tx.UnitPrice
		}
	}
	return total
}

// RollingTotal sums revenue over the trailing n calendar days including today.
func (a *SalesAggregator) RollingTotal(days int) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	today := a.now()
	var total float64
	for i := 0; i < days; i++ {
		total += a.dayTotal(DayKey(today.AddDate(0, 0, -i)))
	}
	return total
}

// TopSold ranks products by units sold since periodStart, descending, ties
// broken by which product was sold first (stable), truncated to limit.
func (a *SalesAggregator) TopSold(periodStart time.Time, limit int) []ProductCount {
	a.mu.Lock()
	defer a.mu.Unlock()

	startKey := DayKey(periodStart)
	counts := make(map[uint]*ProductCount)
	for _, tx := range a.detail {
		if tx.Date < startKey {
			continue
		}
		if c, ok := counts[tx.ProductID]; ok {
			c.Count++
		} else {
			counts[tx.ProductID] = &ProductCount{ProductID: tx.ProductID, Name: tx.ProductName, Count: 1}
		}
	}

	ranked := make([]ProductCount, 0, len(counts))
	for _, c := range counts {
		ranked = append(ranked, *c)
	}
	// First-seen order underneath, then a stable sort by count
	sort.Slice(ranked, func(i, j int) bool {
		return a.firstSeen[ranked[i].ProductID] < a.firstSeen[ranked[j].ProductID]
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Prune compacts every detail row from days before today into the DailyTotal
// map and drops compacted days that fell out of the trailing retention window
// (today counts as day one). It returns the days whose compacted revenue
// changed so the caller can persist them.
func (a *SalesAggregator) Prune(retentionDays int) []models.DailyTotal {
	a.mu.Lock()
	defer a.mu.Unlock()

	today := DayKey(a.now())
	touched := make(map[string]bool)
	kept := a.detail[:0]
	for _, tx := range a.detail {
		if tx.Date < today {
			a.totals[tx.Date] += tx.UnitPrice
			touched[tx.Date] = true
		} else {
			kept = append(kept, tx)
		}
	}
	a.detail = kept

	cutoff := DayKey(a.now().AddDate(0, 0, -(retentionDays - 1)))
	for day := range a.totals {
		if day < cutoff {
			delete(a.totals, day)
			delete(touched, day)
		}
	}

	changed := make([]models.DailyTotal, 0, len(touched))
	for day := range touched {
		changed = append(changed, models.DailyTotal{Date: day, Revenue: a.totals[day]})
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].Date < changed[j].Date })
	return changed
}
