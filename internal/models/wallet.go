package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wallet holds the balance of a single user in minor currency units.
type Wallet struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User          *User     `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	WalletAddress string    `gorm:"type:uuid;uniqueIndex;not null" json:"wallet_address"`
	Balance       int64     `gorm:"not null;default:0;check:chk_wallets_balance_non_negative,balance >= 0" json:"balance"`
	IsDeleted     bool      `gorm:"not null;default:false;index" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	// Ensure balance starts at 0
	w.Balance = 0
	w.Prepare()
	return nil
}

// Prepare assigns the identifiers a new wallet needs. Existing values are kept.
func (w *Wallet) Prepare() {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.WalletAddress == "" {
		w.WalletAddress = uuid.NewString()
	}
}

// CanCover reports whether the balance is enough for a debit of amount.
func (w *Wallet) CanCover(amount int64) bool {
	return amount > 0 && w.Balance >= amount
}

// BalanceDisplay renders the balance in major units.
func (w *Wallet) BalanceDisplay() string {
	return FormatMinor(w.Balance)
}
