package billing

import (
	"context"
	"testing"
	"time"

	"wuroud-pos/internal/models"
)

func txAt(day time.Time, productID uint, name string, price float64) models.SaleTransaction {
	return models.SaleTransaction{
		ProductID:   productID,
		ProductName: name,
		UnitPrice:   price,
		Timestamp:   day,
		Date:        DayKey(day),
	}
}

func TestDayAndRollingTotals(t *testing.T) {
	today := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	yesterday := today.AddDate(0, 0, -1)
	agg := NewSalesAggregator(fixedClock(today))

	err := agg.AppendTransactions(context.Background(), []models.SaleTransaction{
		txAt(today, 1, "Soap", 100),
		txAt(today, 1, "Soap", 50),
		txAt(yesterday, 2, "Sugar", 200),
	})
	if err != nil {
		t.Fatalf("AppendTransactions: %v", err)
	}

	if got := agg.DayTotal(today); got != 150 {
		t.Errorf("DayTotal(today) = %v, want 150", got)
	}
	if got := agg.RollingTotal(2); got != 350 {
		t.Errorf("RollingTotal(2) = %v, want 350", got)
	}
	if got := agg.RollingTotal(1); got != 150 {
		t.Errorf("RollingTotal(1) = %v, want 150", got)
	}
}

func TestTopSoldTieBreak(t *testing.T) {
	today := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	agg := NewSalesAggregator(fixedClock(today))

	// A sold first, then B; both end up with two units
	agg.AppendTransactions(context.Background(), []models.SaleTransaction{
		txAt(today, 1, "A", 10),
		txAt(today, 2, "B", 10),
		txAt(today, 2, "B", 10),
		txAt(today, 1, "A", 10),
		txAt(today, 3, "C", 10),
	})

	top := agg.TopSold(today.AddDate(0, 0, -7), 2)
	if len(top) != 2 {
		t.Fatalf("TopSold returned %d rows, want 2", len(top))
	}
	if top[0].Name != "A" || top[0].Count != 2 {
		t.Errorf("top[0] = %+v, want A with 2", top[0])
	}
	if top[1].Name != "B" || top[1].Count != 2 {
		t.Errorf("top[1] = %+v, want B with 2", top[1])
	}
}

func TestTopSoldExcludesBeforePeriod(t *testing.T) {
	today := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	agg := NewSalesAggregator(fixedClock(today))

	agg.AppendTransactions(context.Background(), []models.SaleTransaction{
		txAt(today.AddDate(0, 0, -10), 1, "Old", 10),
		txAt(today, 2, "Fresh", 10),
	})

	top := agg.TopSold(today.AddDate(0, 0, -7), 5)
	if len(top) != 1 || top[0].Name != "Fresh" {
		t.Errorf("TopSold = %+v, want only Fresh", top)
	}
}

func TestPruneCompactsAndRetains(t *testing.T) {
	today := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	agg := NewSalesAggregator(fixedClock(today))

	yesterday := today.AddDate(0, 0, -1)
	ancient := today.AddDate(0, 0, -40)
	agg.AppendTransactions(context.Background(), []models.SaleTransaction{
		txAt(ancient, 1, "Soap", 70),
		txAt(yesterday, 1, "Soap", 100),
		txAt(yesterday, 2, "Sugar", 25),
		txAt(today, 1, "Soap", 30),
	})

	changed := agg.Prune(30)

	// Yesterday was folded; the 40-day-old day fell out of the window entirely
	if len(changed) != 1 || changed[0].Date != DayKey(yesterday) || changed[0].Revenue != 125 {
		t.Fatalf("Prune changed = %+v, want [{%s 125}]", changed, DayKey(yesterday))
	}
	if got := agg.DayTotal(yesterday); got != 125 {
		t.Errorf("DayTotal(yesterday) after prune = %v, want 125", got)
	}
	if got := agg.DayTotal(today); got != 30 {
		t.Errorf("DayTotal(today) after prune = %v, want 30", got)
	}
	if got := agg.DayTotal(ancient); got != 0 {
		t.Errorf("DayTotal(ancient) after prune = %v, want 0", got)
	}

	// Compacted days no longer count toward the leaderboard
	top := agg.TopSold(today.AddDate(0, 0, -7), 5)
	if len(top) != 1 || top[0].Name != "Soap" || top[0].Count != 1 {
		t.Errorf("TopSold after prune = %+v, want only today's Soap unit", top)
	}
}

func TestSeedRestoresCompactedDays(t *testing.T) {
	today := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	agg := NewSalesAggregator(fixedClock(today))

	agg.Seed(
		[]models.SaleTransaction{txAt(today, 1, "Soap", 30)},
		[]models.DailyTotal{{Date: DayKey(today.AddDate(0, 0, -1)), Revenue: 125}},
	)

	if got := agg.RollingTotal(2); got != 155 {
		t.Errorf("RollingTotal(2) = %v, want 155", got)
	}
}

func TestRemoveTransaction(t *testing.T) {
	today := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	agg := NewSalesAggregator(fixedClock(today))

	tx := txAt(today, 1, "Soap", 30)
	tx.ID = 7
	agg.AppendTransactions(context.Background(), []models.SaleTransaction{tx})
	agg.RemoveTransaction(7)

	if got := agg.DayTotal(today); got != 0 {
		t.Errorf("DayTotal after removal = %v, want 0", got)
	}
}
