package database

import (
	"context"
	"errors"

	"wuroud-pos/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Stores implements the billing package's persistence interfaces
// (StockWriter, TransactionSink, TokenStore) over the shared gorm handle.
type Stores struct {
	db *gorm.DB
}

// NewStores wraps the connected database.
func NewStores(db *gorm.DB) *Stores {
	return &Stores{db: db}
}

// PersistStock writes a SKU's new quantity-on-hand.
func (s *Stores) PersistStock(ctx context.Context, productID uint, quantity int) error {
	return s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_quantity", quantity).Error
}

// AppendTransactions writes one checkout's per-unit sale records in a single
// batch insert, so a bill's transactions land together or not at all.
func (s *Stores) AppendTransactions(ctx context.Context, txs []models.SaleTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&txs).Error
}

// LoadToken reads the persisted bill-number token, "" when none exists yet.
func (s *Stores) LoadToken(ctx context.Context) (string, error) {
	var seq models.InvoiceSequence
	err := s.db.WithContext(ctx).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return seq.Token, nil
}

// SaveToken upserts the single bill-number row.
func (s *Stores) SaveToken(ctx context.Context, token string) error {
	var seq models.InvoiceSequence
	err := s.db.WithContext(ctx).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.WithContext(ctx).Create(&models.InvoiceSequence{Token: token}).Error
	}
	if err != nil {
		return err
	}
	seq.Token = token
	return s.db.WithContext(ctx).Save(&seq).Error
}

// UpdateToken advances the bill-number token inside one transaction, holding
// a FOR UPDATE lock on the row so two registers issuing at the same moment
// get distinct numbers instead of both reading the same token.
func (s *Stores) UpdateToken(ctx context.Context, advance func(current string) (issued, next string)) (string, error) {
	var issued string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq models.InvoiceSequence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&seq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			var next string
			issued, next = advance("")
			return tx.Create(&models.InvoiceSequence{Token: next}).Error
		}
		if err != nil {
			return err
		}
		issued, seq.Token = advance(seq.Token)
		return tx.Save(&seq).Error
	})
	if err != nil {
		return "", err
	}
	return issued, nil
}

// LoadProducts fetches the whole catalog for the ledger.
func (s *Stores) LoadProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).Find(&products).Error
	return products, err
}

// LoadTransactionsSince fetches retained detail rows for seeding the
// aggregator, oldest first so first-seen ranks survive restarts.
func (s *Stores) LoadTransactionsSince(ctx context.Context, date string) ([]models.SaleTransaction, error) {
	var txs []models.SaleTransaction
	err := s.db.WithContext(ctx).
		Where("date >= ?", date).
		Order("id asc").
		Find(&txs).Error
	return txs, err
}

// LoadDailyTotals fetches the compacted per-day revenue rows.
func (s *Stores) LoadDailyTotals(ctx context.Context) ([]models.DailyTotal, error) {
	var totals []models.DailyTotal
	err := s.db.WithContext(ctx).Find(&totals).Error
	return totals, err
}

// SaveDailyTotals upserts compacted days and prunes rows older than cutoff,
// mirroring what the in-memory aggregator just did.
func (s *Stores) SaveDailyTotals(ctx context.Context, totals []models.DailyTotal, cutoffDate string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range totals {
			var existing models.DailyTotal
			err := tx.Where("date = ?", t.Date).First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := tx.Create(&models.DailyTotal{Date: t.Date, Revenue: t.Revenue}).Error; err != nil {
					return err
				}
				continue
			}
			if err != nil {
				return err
			}
			existing.Revenue = t.Revenue
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
		}
		return tx.Where("date < ?", cutoffDate).Delete(&models.DailyTotal{}).Error
	})
}

// DeleteTransactionsBefore drops per-unit detail that the aggregator folded
// into daily totals.
func (s *Stores) DeleteTransactionsBefore(ctx context.Context, date string) error {
	return s.db.WithContext(ctx).Where("date < ?", date).Delete(&models.SaleTransaction{}).Error
}
