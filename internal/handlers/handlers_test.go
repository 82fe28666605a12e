package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "ledgerpay/internal/errors"
	"ledgerpay/internal/models"
)

const (
	testUserID  = "2b7e1c4a-0f7d-4a57-8d0e-6c1f4c1f9a10"
	testAddress = "9d3c7b1e-5a2f-4e8d-b6c4-1a2b3c4d5e6f"
)

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) Fund(ctx context.Context, userID string, amount int64) (*models.Transaction, error) {
	args := m.Called(ctx, userID, amount)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *MockWalletService) Withdraw(ctx context.Context, userID string, amount int64) (*models.Transaction, error) {
	args := m.Called(ctx, userID, amount)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *MockWalletService) Transfer(ctx context.Context, senderUserID, receiverAddress string, amount int64) (*models.Transaction, error) {
	args := m.Called(ctx, senderUserID, receiverAddress, amount)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *MockWalletService) CreateWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	w, _ := args.Get(0).(*models.Wallet)
	return w, args.Error(1)
}

func (m *MockWalletService) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	w, _ := args.Get(0).(*models.Wallet)
	return w, args.Error(1)
}

func (m *MockWalletService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *MockWalletService) GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	args := m.Called(ctx, reference)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *MockWalletService) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	txs, _ := args.Get(0).([]models.Transaction)
	return txs, args.Get(1).(int64), args.Error(2)
}

func setupApp(svc *MockWalletService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("claims", &models.UserClaims{UserID: testUserID})
		return c.Next()
	})

	wh := NewWalletHandler(svc)
	th := NewTransactionHandler(svc)
	app.Get("/wallet", wh.GetWallet)
	app.Post("/wallet/fund", wh.Fund)
	app.Post("/wallet/withdraw", wh.Withdraw)
	app.Post("/wallet/transfer", wh.Transfer)
	app.Get("/transactions", th.List)
	app.Get("/transactions/:reference", th.GetByReference)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	_ = json.Unmarshal(raw, &decoded)
	return resp.StatusCode, decoded, resp.Header.Get(fiber.HeaderRetryAfter)
}

func completed(txType models.TransactionType, amount int64) *models.Transaction {
	tx := models.NewTransaction(txType, testUserID, testUserID, testAddress, amount)
	tx.Reference = "TX-01HZX0000000000000000000"
	tx.Status = models.TransactionStatusCompleted
	return tx
}

func TestWalletHandler_Fund(t *testing.T) {
	svc := new(MockWalletService)
	svc.On("Fund", mock.Anything, testUserID, int64(500)).Return(completed(models.TransactionTypeDeposit, 500), nil)
	svc.On("GetWallet", mock.Anything, testUserID).Return(&models.Wallet{WalletAddress: testAddress, Balance: 500}, nil)

	status, body, _ := do(t, setupApp(svc), fiber.MethodPost, "/wallet/fund", `{"amount":500}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Wallet funded successfully", body["message"])

	wallet := body["wallet"].(map[string]interface{})
	assert.Equal(t, float64(500), wallet["balance"])
	assert.Equal(t, "5.00", wallet["balance_display"])
	svc.AssertExpectations(t)
}

func TestWalletHandler_RejectsInvalidAmountsBeforeTheLedger(t *testing.T) {
	svc := new(MockWalletService)
	app := setupApp(svc)

	for _, body := range []string{`{"amount":0}`, `{"amount":-5}`, `{}`} {
		status, decoded, _ := do(t, app, fiber.MethodPost, "/wallet/fund", body)
		assert.Equal(t, fiber.StatusBadRequest, status, body)
		assert.Equal(t, string(apperrors.CodeInvalidAmount), decoded["code"], body)
	}

	status, _, _ := do(t, app, fiber.MethodPost, "/wallet/withdraw", `not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	svc.AssertNotCalled(t, "Fund", mock.Anything, mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "Withdraw", mock.Anything, mock.Anything, mock.Anything)
}

func TestWalletHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantStatus     int
		wantRetryAfter string
		wantMessage    string
	}{
		{name: "insufficient funds", err: apperrors.ErrInsufficientFunds, wantStatus: fiber.StatusUnprocessableEntity,
			wantMessage: apperrors.ErrInsufficientFunds.Message},
		{name: "wallet not found", err: apperrors.ErrWalletNotFound, wantStatus: fiber.StatusNotFound,
			wantMessage: apperrors.ErrWalletNotFound.Message},
		{name: "storage conflict", err: apperrors.ErrStorageConflict, wantStatus: fiber.StatusServiceUnavailable,
			wantRetryAfter: "1", wantMessage: apperrors.ErrStorageConflict.Message},
		{name: "reference collision", err: apperrors.ErrReferenceCollision, wantStatus: fiber.StatusServiceUnavailable,
			wantRetryAfter: "1", wantMessage: apperrors.ErrReferenceCollision.Message},
		{name: "timeout", err: context.DeadlineExceeded, wantStatus: fiber.StatusServiceUnavailable,
			wantRetryAfter: "1", wantMessage: "request timed out"},
		{name: "internal cause hidden",
			err:        apperrors.Wrap(apperrors.CodeInternal, "internal error", errors.New("pq: secret detail")),
			wantStatus: fiber.StatusInternalServerError, wantMessage: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockWalletService)
			svc.On("Withdraw", mock.Anything, testUserID, int64(300)).Return(nil, tt.err)

			status, body, retryAfter := do(t, setupApp(svc), fiber.MethodPost, "/wallet/withdraw", `{"amount":300}`)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantRetryAfter, retryAfter)
			assert.Equal(t, tt.wantMessage, body["error"])
		})
	}
}

func TestWalletHandler_Transfer(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockWalletService)
		svc.On("Transfer", mock.Anything, testUserID, testAddress, int64(100)).
			Return(completed(models.TransactionTypeTransfer, 100), nil)
		svc.On("GetWallet", mock.Anything, testUserID).Return(&models.Wallet{Balance: 400}, nil)

		status, body, _ := do(t, setupApp(svc), fiber.MethodPost, "/wallet/transfer",
			`{"wallet_address":"`+testAddress+`","amount":100}`)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "Transfer successful", body["message"])
		svc.AssertExpectations(t)
	})

	t.Run("self transfer", func(t *testing.T) {
		svc := new(MockWalletService)
		svc.On("Transfer", mock.Anything, testUserID, testAddress, int64(100)).Return(nil, apperrors.ErrSelfTransfer)

		status, body, _ := do(t, setupApp(svc), fiber.MethodPost, "/wallet/transfer",
			`{"wallet_address":"`+testAddress+`","amount":100}`)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, string(apperrors.CodeSelfTransfer), body["code"])
	})

	t.Run("malformed address", func(t *testing.T) {
		svc := new(MockWalletService)
		status, body, _ := do(t, setupApp(svc), fiber.MethodPost, "/wallet/transfer",
			`{"wallet_address":"abc","amount":100}`)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, string(apperrors.CodeInvalidRequest), body["code"])
		svc.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWalletHandler_GetWallet(t *testing.T) {
	svc := new(MockWalletService)
	svc.On("GetWallet", mock.Anything, testUserID).Return(nil, apperrors.ErrWalletNotFound)

	status, _, _ := do(t, setupApp(svc), fiber.MethodGet, "/wallet", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestTransactionHandler_List(t *testing.T) {
	svc := new(MockWalletService)
	txs := []models.Transaction{*completed(models.TransactionTypeDeposit, 10)}
	svc.On("ListTransactions", mock.Anything, testUserID, 5, 5).Return(txs, int64(11), nil)

	status, body, _ := do(t, setupApp(svc), fiber.MethodGet, "/transactions?page=2&limit=5", "")
	assert.Equal(t, fiber.StatusOK, status)

	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["page"])
	assert.Equal(t, float64(11), pagination["total"])
	assert.Equal(t, float64(3), pagination["last_page"])
	assert.Len(t, body["data"], 1)
}

func TestTransactionHandler_GetByReference(t *testing.T) {
	own := completed(models.TransactionTypeDeposit, 10)
	foreign := models.NewTransaction(models.TransactionTypeTransfer, "someone", "else", testAddress, 10)

	svc := new(MockWalletService)
	svc.On("GetTransactionByReference", mock.Anything, "TX-OWN").Return(own, nil)
	svc.On("GetTransactionByReference", mock.Anything, "TX-FOREIGN").Return(foreign, nil)
	svc.On("GetTransactionByReference", mock.Anything, "TX-MISSING").Return(nil, apperrors.ErrTransactionNotFound)
	app := setupApp(svc)

	status, _, _ := do(t, app, fiber.MethodGet, "/transactions/TX-OWN", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, _, _ = do(t, app, fiber.MethodGet, "/transactions/TX-FOREIGN", "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _, _ = do(t, app, fiber.MethodGet, "/transactions/TX-MISSING", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("down") }

	app := fiber.New()
	app.Get("/healthy", NewHealthHandler("test").WithCheck("database", ok).HealthCheck)
	app.Get("/degraded", NewHealthHandler("test").WithCheck("database", ok).WithCheck("redis", down).HealthCheck)
	app.Get("/cache", NewHealthHandler("test").CacheStats)

	status, body, _ := do(t, app, fiber.MethodGet, "/healthy", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body, _ = do(t, app, fiber.MethodGet, "/degraded", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "unavailable", body["services"].(map[string]interface{})["redis"])

	status, _, _ = do(t, app, fiber.MethodGet, "/cache", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}
