package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ledgerpay/internal/repositories/memory"
	"ledgerpay/internal/services/wallet"
)

func TestSeed(t *testing.T) {
	store := memory.New(memory.Options{})
	svc := wallet.NewService(store, wallet.Config{}, wallet.Dependencies{})
	ctx := context.Background()
	in := seedInput{Email: "ada@example.com", Password: "Secret123", Name: "Ada", Fund: 500}

	res, err := seed(ctx, store.Users(), svc, in)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, int64(500), res.Wallet.Balance)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte(in.Password)))

	again, err := seed(ctx, store.Users(), svc, in)
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, res.User.ID, again.User.ID)
	assert.Equal(t, res.Wallet.WalletAddress, again.Wallet.WalletAddress)
	assert.Equal(t, int64(1000), again.Wallet.Balance)
	assert.Equal(t, 2, store.TransactionCount())
}

func TestSeed_RejectsWeakInput(t *testing.T) {
	store := memory.New(memory.Options{})
	svc := wallet.NewService(store, wallet.Config{}, wallet.Dependencies{})

	_, err := seed(context.Background(), store.Users(), svc, seedInput{Email: "nope", Password: "short"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "password")
}
