package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "ledgerpay/internal/errors"
)

func TestValidateAmountRequest(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		wantErr error
	}{
		{name: "positive", amount: 500},
		{name: "zero", amount: 0, wantErr: apperrors.ErrInvalidAmount},
		{name: "negative", amount: -5, wantErr: apperrors.ErrInvalidAmount},
		{name: "over limit", amount: MaxTransactionAmount + 1, wantErr: apperrors.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmountRequest(AmountRequest{Amount: tt.amount})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateTransferRequest(t *testing.T) {
	const addr = "3f1c2b9e-6a44-4c55-9d8e-1b2c3d4e5f60"

	assert.NoError(t, ValidateTransferRequest(TransferRequest{WalletAddress: addr, Amount: 100}))

	err := ValidateTransferRequest(TransferRequest{WalletAddress: addr, Amount: 0})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	err = ValidateTransferRequest(TransferRequest{WalletAddress: "not-a-uuid", Amount: 100})
	assert.Equal(t, apperrors.CodeInvalidRequest, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "wallet_address")

	err = ValidateTransferRequest(TransferRequest{Amount: -1})
	assert.Equal(t, apperrors.CodeInvalidRequest, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "amount")
}

func TestValidateAmountRequest_LimitMatchesConstant(t *testing.T) {
	assert.NoError(t, ValidateAmountRequest(AmountRequest{Amount: MaxTransactionAmount}))
}

func TestValidator_Password(t *testing.T) {
	v := New()
	v.Password("password", "Secret123")
	assert.True(t, v.Valid())

	v = New()
	v.Password("password", "short")
	assert.False(t, v.Valid())
	assert.Contains(t, v.Errors, "password")
}

func TestValidator_Email(t *testing.T) {
	v := New()
	v.Email("email", "ada@example.com")
	assert.True(t, v.Valid())

	v.Email("email", "nope")
	assert.Equal(t, "must be a valid email address", v.Errors["email"])
}
