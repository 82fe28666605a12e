package repositories

import (
	"context"
	"errors"
	"fmt"

	"ledgerpay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Append(ctx context.Context, tx *models.Transaction) error {
	if !tx.Type.Valid() || tx.Amount <= 0 || tx.Reference == "" {
		return ErrInvalidTransaction
	}
	if err := tx.Settle(models.TransactionStatusCompleted); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}

	// ON CONFLICT keeps the surrounding transaction usable after a collision,
	// so the caller can retry inside the same scope.
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reference"}},
			DoNothing: true,
		}).
		Create(tx)
	if result.Error != nil {
		tx.Status = models.TransactionStatusFailed
		return fmt.Errorf("failed to append transaction: %w", classifyError(result.Error))
	}
	if result.RowsAffected == 0 {
		tx.Status = models.TransactionStatusPending
		return ErrDuplicateReference
	}
	return nil
}

func (r *transactionRepository) first(ctx context.Context, query string, arg interface{}) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).Where(query, arg).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", classifyError(err))
	}
	return &tx, nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	return r.first(ctx, "reference = ?", reference)
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", classifyError(err))
	}

	var transactions []models.Transaction
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transactions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", classifyError(err))
	}
	return transactions, total, nil
}
