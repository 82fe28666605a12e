package handlers

import (
	"ledgerpay/internal/services/wallet"
	"ledgerpay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultTransactionLimit = 20
	maxTransactionLimit     = 100
)

type TransactionHandler struct {
	walletService wallet.Service
}

func NewTransactionHandler(walletService wallet.Service) *TransactionHandler {
	return &TransactionHandler{walletService: walletService}
}

// List returns the caller's ledger entries, newest first.
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	userID, err := utils.GetUserID(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.GetPagination(c, defaultTransactionLimit, maxTransactionLimit)
	txs, total, err := h.walletService.ListTransactions(c.UserContext(), userID, p.Limit, p.Offset)
	if err != nil {
		return utils.DomainError(c, err)
	}
	p.SetTotal(total)

	return utils.Success(c, utils.NewPaginatedResponse(txs, p))
}

// GetByReference returns one entry. Entries the caller is not a party to
// are reported as missing.
func (h *TransactionHandler) GetByReference(c *fiber.Ctx) error {
	userID, err := utils.GetUserID(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	tx, err := h.walletService.GetTransactionByReference(c.UserContext(), c.Params("reference"))
	if err != nil {
		return utils.DomainError(c, err)
	}
	if !tx.Involves(userID) {
		return utils.NotFound(c, "transaction not found")
	}

	return utils.Success(c, fiber.Map{"transaction": tx})
}
