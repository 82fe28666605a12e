// Package notification publishes settled ledger entries to downstream
// consumers. Publishing happens after commit and can never undo it.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ledgerpay/internal/models"

	"go.uber.org/zap"
)

const (
	EventTransactionCompleted = "transaction.completed"

	TransactionEventsChannel = "transaction_events"
)

type TransactionEvent struct {
	EventType       string    `json:"event_type"`
	TransactionID   string    `json:"transaction_id"`
	Reference       string    `json:"reference"`
	TransactionType string    `json:"transaction_type"`
	Status          string    `json:"status"`
	SenderID        string    `json:"sender_id"`
	ReceiverID      string    `json:"receiver_id"`
	WalletAddress   string    `json:"wallet_address"`
	Amount          int64     `json:"amount"` // minor units
	AmountDisplay   string    `json:"amount_display"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewTransactionEvent describes a settled transaction.
func NewTransactionEvent(tx *models.Transaction) *TransactionEvent {
	return &TransactionEvent{
		EventType:       EventTransactionCompleted,
		TransactionID:   tx.ID,
		Reference:       tx.Reference,
		TransactionType: tx.Type.String(),
		Status:          tx.Status.String(),
		SenderID:        tx.SenderID,
		ReceiverID:      tx.ReceiverID,
		WalletAddress:   tx.WalletAddress,
		Amount:          tx.Amount,
		AmountDisplay:   tx.AmountDisplay(),
		Timestamp:       time.Now().UTC(),
	}
}

func (e *TransactionEvent) Marshal() ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return payload, nil
}

// Publisher delivers transaction events.
type Publisher interface {
	PublishTransaction(ctx context.Context, tx *models.Transaction) error
	Close() error
}

// LogPublisher only logs events. It is the fallback when no broker is configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishTransaction(ctx context.Context, tx *models.Transaction) error {
	p.log.Info("transaction settled",
		zap.String("reference", tx.Reference),
		zap.String("type", tx.Type.String()),
		zap.String("sender_id", tx.SenderID),
		zap.String("receiver_id", tx.ReceiverID),
		zap.Int64("amount", tx.Amount))
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) PublishTransaction(context.Context, *models.Transaction) error { return nil }
func (NoopPublisher) Close() error                                                 { return nil }
