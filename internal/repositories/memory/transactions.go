package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
)

type transactionRepo struct {
	s  *Store
	sc *scope
}

func (r *transactionRepo) Append(ctx context.Context, tx *models.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !tx.Type.Valid() || tx.Amount <= 0 || tx.Reference == "" {
		return repositories.ErrInvalidTransaction
	}
	if tx.Status != models.TransactionStatusPending {
		return fmt.Errorf("%w: %w", repositories.ErrInvalidTransaction, models.ErrSettledTransaction)
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.byRef[tx.Reference]; ok {
		return repositories.ErrDuplicateReference
	}
	if _, ok := r.s.reserved[tx.Reference]; ok {
		return repositories.ErrDuplicateReference
	}

	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	if err := tx.Settle(models.TransactionStatusCompleted); err != nil {
		return err
	}

	if r.sc == nil {
		r.s.txns[tx.ID] = *tx
		r.s.byRef[tx.Reference] = tx.ID
		r.s.txOrder = append(r.s.txOrder, tx.ID)
		return nil
	}
	r.s.reserved[tx.Reference] = struct{}{}
	r.sc.appended = append(r.sc.appended, *tx)
	return nil
}

func (r *transactionRepo) find(match func(models.Transaction) bool) (*models.Transaction, error) {
	if r.sc != nil {
		for _, tx := range r.sc.appended {
			if match(tx) {
				cp := tx
				return &cp, nil
			}
		}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range r.s.txOrder {
		if tx := r.s.txns[id]; match(tx) {
			return &tx, nil
		}
	}
	return nil, repositories.ErrTransactionNotFound
}

func (r *transactionRepo) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	tx, ok := r.s.txns[id]
	r.s.mu.Unlock()
	if ok {
		return &tx, nil
	}
	return r.find(func(t models.Transaction) bool { return t.ID == id })
}

func (r *transactionRepo) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	id, ok := r.s.byRef[reference]
	tx := r.s.txns[id]
	r.s.mu.Unlock()
	if ok {
		return &tx, nil
	}
	return r.find(func(t models.Transaction) bool { return t.Reference == reference })
}

func (r *transactionRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []models.Transaction
	for i := len(r.s.txOrder) - 1; i >= 0; i-- {
		tx := r.s.txns[r.s.txOrder[i]]
		if tx.Involves(userID) {
			matched = append(matched, tx)
		}
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return []models.Transaction{}, total, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}
