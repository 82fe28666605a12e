// Command seed creates an account with a wallet, optionally funds it
// through the ledger, and prints a bearer token for it.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"ledgerpay/internal/config"
	apperrors "ledgerpay/internal/errors"
	"ledgerpay/internal/logger"
	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/services/wallet"
	"ledgerpay/internal/utils"
	"ledgerpay/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type seedInput struct {
	Email    string
	Password string
	Name     string
	Fund     int64
}

type seedResult struct {
	User    *models.User
	Wallet  *models.Wallet
	Created bool
}

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "no .env file loaded: %v\n", err)
	}
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	input := seedInput{
		Email:    os.Getenv("SEED_EMAIL"),
		Password: os.Getenv("SEED_PASSWORD"),
		Name:     config.GetEnv("SEED_NAME", "Seed User"),
		Fund:     int64(config.GetIntEnv("SEED_FUND_AMOUNT", 0)),
	}
	if input.Email == "" || input.Password == "" {
		log.Fatal("SEED_EMAIL and SEED_PASSWORD must be set in environment")
	}

	db, err := repositories.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.Warn("failed to close database connection", zap.Error(err))
		}
	}()
	if err := repositories.Migrate(db); err != nil {
		log.Fatal("failed to migrate", zap.Error(err))
	}

	store := repositories.NewStore(db, repositories.StoreOptions{LockTimeout: cfg.Ledger.LockTimeout})
	svc := wallet.NewService(store, wallet.Config{}, wallet.Dependencies{Logger: log})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := seed(ctx, store.Users(), svc, input)
	if err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}

	token, err := utils.GenerateToken(&models.UserClaims{
		UserID:      res.User.ID,
		Email:       res.User.Email,
		Permissions: models.DefaultPermissions(),
	}, cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		log.Fatal("failed to sign token", zap.Error(err))
	}

	log.Info("seed complete",
		zap.Bool("created", res.Created),
		zap.String("user_id", res.User.ID),
		zap.String("wallet_address", res.Wallet.WalletAddress),
		zap.String("balance", res.Wallet.BalanceDisplay()))
	fmt.Println(token)
}

// seed is idempotent on email: an existing account is reused and only
// receives the funding.
func seed(ctx context.Context, users repositories.UserRepository, svc wallet.Service, in seedInput) (*seedResult, error) {
	v := validation.New()
	v.Email("email", in.Email)
	v.Password("password", in.Password)
	v.MaxLength("name", in.Name, validation.MaxNameLength)
	if in.Fund < 0 {
		v.AddError("fund", "must not be negative")
	}
	if !v.Valid() {
		return nil, errors.New(v.Error())
	}

	res := &seedResult{}
	user, err := users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		res.User = user
	case errors.Is(err, repositories.ErrUserNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user = &models.User{Email: in.Email, PasswordHash: string(hash), Name: in.Name}
		if err := users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		res.User = user
		res.Created = true
	default:
		return nil, fmt.Errorf("look up user: %w", err)
	}

	w, err := svc.CreateWallet(ctx, user.ID)
	if errors.Is(err, apperrors.ErrWalletExists) {
		w, err = svc.GetWallet(ctx, user.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("wallet: %w", err)
	}

	if in.Fund > 0 {
		if _, err := svc.Fund(ctx, user.ID, in.Fund); err != nil {
			return nil, fmt.Errorf("fund wallet: %w", err)
		}
		if w, err = svc.GetWallet(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("reload wallet: %w", err)
		}
	}
	res.Wallet = w
	return res, nil
}
