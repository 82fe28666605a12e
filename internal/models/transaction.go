package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSettledTransaction is returned when code tries to change a transaction
// that already reached a terminal status.
var ErrSettledTransaction = errors.New("transaction is settled and cannot be modified")

// TransactionType is the closed set of balance-affecting operations.
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "deposit"
	TransactionTypeWithdraw TransactionType = "withdraw"
	TransactionTypeTransfer TransactionType = "transfer"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdraw, TransactionTypeTransfer:
		return true
	default:
		return false
	}
}

func (t TransactionType) String() string { return string(t) }

func (t TransactionType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid transaction type %q", string(t))
	}
	return string(t), nil
}

func (t *TransactionType) Scan(src interface{}) error {
	v, err := scanString(src)
	if err != nil {
		return err
	}
	parsed := TransactionType(v)
	if !parsed.Valid() {
		return fmt.Errorf("invalid transaction type %q", v)
	}
	*t = parsed
	return nil
}

// TransactionStatus is the lifecycle state of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is allowed.
func (s TransactionStatus) Terminal() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo allows pending -> completed and pending -> failed only.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	return s == TransactionStatusPending && next.Terminal()
}

func (s TransactionStatus) String() string { return string(s) }

func (s TransactionStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid transaction status %q", string(s))
	}
	return string(s), nil
}

func (s *TransactionStatus) Scan(src interface{}) error {
	v, err := scanString(src)
	if err != nil {
		return err
	}
	parsed := TransactionStatus(v)
	if !parsed.Valid() {
		return fmt.Errorf("invalid transaction status %q", v)
	}
	*s = parsed
	return nil
}

func scanString(src interface{}) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported scan type %T", src)
	}
}

// Transaction is an immutable ledger entry. For deposits and withdrawals the
// sender and receiver are the same user and WalletAddress is their own wallet;
// for transfers WalletAddress is the receiving wallet.
type Transaction struct {
	ID            string            `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID      string            `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender        *User             `gorm:"foreignKey:SenderID;constraint:OnDelete:RESTRICT" json:"-"`
	ReceiverID    string            `gorm:"type:uuid;not null;index" json:"receiver_id"`
	Receiver      *User             `gorm:"foreignKey:ReceiverID;constraint:OnDelete:RESTRICT" json:"-"`
	WalletAddress string            `gorm:"type:uuid;not null;index" json:"wallet_address"`
	Wallet        *Wallet           `gorm:"foreignKey:WalletAddress;references:WalletAddress;constraint:OnDelete:RESTRICT" json:"-"`
	Amount        int64             `gorm:"not null;check:chk_transactions_amount_positive,amount > 0" json:"amount"`
	Type          TransactionType   `gorm:"column:transaction_type;type:varchar(16);not null" json:"transaction_type"`
	Status        TransactionStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Reference     string            `gorm:"uniqueIndex;not null" json:"reference"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// NewTransaction builds a pending entry.
func NewTransaction(txType TransactionType, senderID, receiverID, walletAddress string, amount int64) *Transaction {
	return &Transaction{
		ID:            uuid.NewString(),
		SenderID:      senderID,
		ReceiverID:    receiverID,
		WalletAddress: walletAddress,
		Amount:        amount,
		Type:          txType,
		Status:        TransactionStatusPending,
	}
}

// Settle moves a pending transaction to a terminal status.
func (t *Transaction) Settle(status TransactionStatus) error {
	if !t.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrSettledTransaction, t.Status, status)
	}
	t.Status = status
	return nil
}

// Fail marks a record whose scope rolled back. Such a record was never
// persisted, so a completed status set during the scope is overridden.
func (t *Transaction) Fail() {
	t.Status = TransactionStatusFailed
}

// Involves reports whether the user is either side of the transaction.
func (t *Transaction) Involves(userID string) bool {
	return t.SenderID == userID || t.ReceiverID == userID
}

func (t *Transaction) AmountDisplay() string {
	return FormatMinor(t.Amount)
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if !t.Type.Valid() {
		return fmt.Errorf("invalid transaction type %q", string(t.Type))
	}
	if !t.Status.Valid() {
		return fmt.Errorf("invalid transaction status %q", string(t.Status))
	}
	return nil
}

// BeforeUpdate refuses every update: ledger rows are written once.
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	return ErrSettledTransaction
}
