package database

import (
	"context"

	"wuroud-pos/internal/models"
)

// RecentTransactions returns the latest sale rows, newest first, for the
// dashboard's recent-activity list.
func (s *Stores) RecentTransactions(ctx context.Context, limit int) ([]models.SaleTransaction, error) {
	var txs []models.SaleTransaction
	err := s.db.WithContext(ctx).
		Order("timestamp desc, id desc").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

// TransactionCount counts every retained per-unit sale row.
// COALESCE-style safety is not needed here; an empty table counts as 0.
func (s *Stores) TransactionCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.SaleTransaction{}).Count(&count).Error
	return count, err
}
