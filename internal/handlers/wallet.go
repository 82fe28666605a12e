package handlers

import (
	"context"

	"ledgerpay/internal/models"
	"ledgerpay/internal/services/wallet"
	"ledgerpay/internal/utils"
	"ledgerpay/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	walletService wallet.Service
}

func NewWalletHandler(walletService wallet.Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// walletView is the wallet as returned to its owner.
type walletView struct {
	WalletAddress  string `json:"wallet_address"`
	Balance        int64  `json:"balance"`
	BalanceDisplay string `json:"balance_display"`
}

func newWalletView(w *models.Wallet) walletView {
	return walletView{
		WalletAddress:  w.WalletAddress,
		Balance:        w.Balance,
		BalanceDisplay: w.BalanceDisplay(),
	}
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	userID, err := utils.GetUserID(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	w, err := h.walletService.GetWallet(c.UserContext(), userID)
	if err != nil {
		return utils.DomainError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"message": "Wallet details retrieved successfully",
		"wallet":  newWalletView(w),
	})
}

func (h *WalletHandler) Fund(c *fiber.Ctx) error {
	return h.amountOperation(c, h.walletService.Fund, "Wallet funded successfully")
}

func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	return h.amountOperation(c, h.walletService.Withdraw, "Withdrawal successful")
}

func (h *WalletHandler) Transfer(c *fiber.Ctx) error {
	userID, err := utils.GetUserID(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var req validation.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validation.ValidateTransferRequest(req); err != nil {
		return utils.DomainError(c, err)
	}

	tx, err := h.walletService.Transfer(c.UserContext(), userID, req.WalletAddress, req.Amount)
	if err != nil {
		return utils.DomainError(c, err)
	}
	return h.respondWithBalance(c, userID, tx, "Transfer successful")
}

type amountFunc func(ctx context.Context, userID string, amount int64) (*models.Transaction, error)

func (h *WalletHandler) amountOperation(c *fiber.Ctx, op amountFunc, message string) error {
	userID, err := utils.GetUserID(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var req validation.AmountRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validation.ValidateAmountRequest(req); err != nil {
		return utils.DomainError(c, err)
	}

	tx, err := op(c.UserContext(), userID, req.Amount)
	if err != nil {
		return utils.DomainError(c, err)
	}
	return h.respondWithBalance(c, userID, tx, message)
}

// respondWithBalance reports the committed transaction and the caller's
// balance read after commit.
func (h *WalletHandler) respondWithBalance(c *fiber.Ctx, userID string, tx *models.Transaction, message string) error {
	body := fiber.Map{
		"message":     message,
		"transaction": tx,
	}
	if w, err := h.walletService.GetWallet(c.UserContext(), userID); err == nil {
		body["wallet"] = newWalletView(w)
	}
	return utils.Success(c, body)
}
