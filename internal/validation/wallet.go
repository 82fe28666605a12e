package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "ledgerpay/internal/errors"
)

// AmountRequest is the body of fund and withdraw calls.
type AmountRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0,lte=100000000"`
}

// TransferRequest is the body of a transfer call. Whether the address
// exists, or is the caller's own, is decided by the ledger.
type TransferRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required,uuid"`
	Amount        int64  `json:"amount" validate:"required,gt=0,lte=100000000"`
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateAmountRequest rejects non-positive or oversized amounts.
func ValidateAmountRequest(req AmountRequest) error {
	return validateStruct(req)
}

// ValidateTransferRequest checks the amount and the receiving address shape.
func ValidateTransferRequest(req TransferRequest) error {
	return validateStruct(req)
}

func validateStruct(req interface{}) error {
	v := New()
	if err := structValidator.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return apperrors.Wrap(apperrors.CodeInvalidRequest, "invalid request", err)
		}
		for _, fe := range fieldErrs {
			v.AddError(fe.Field(), fieldMessage(fe))
		}
	}
	return v.asDomainError()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be a positive amount"
	case "lte":
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// asDomainError reports amount-only failures as INVALID_AMOUNT so callers
// see the same code the ledger would return.
func (v *Validator) asDomainError() error {
	if v.Valid() {
		return nil
	}
	if msg, bad := v.Errors["amount"]; bad && len(v.Errors) == 1 {
		return apperrors.New(apperrors.CodeInvalidAmount, "amount "+msg)
	}
	return apperrors.New(apperrors.CodeInvalidRequest, v.Error())
}
