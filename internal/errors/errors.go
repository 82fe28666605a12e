// Package errors defines the typed domain errors returned by the ledger.
// Every failure carries a stable Code that callers switch on; the wrapped
// Err keeps the underlying cause for logs.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code identifies a class of domain failure.
type Code string

const (
	CodeWalletNotFound      Code = "WALLET_NOT_FOUND"
	CodeInvalidAmount       Code = "INVALID_AMOUNT"
	CodeInsufficientFunds   Code = "INSUFFICIENT_FUNDS"
	CodeSelfTransfer        Code = "SELF_TRANSFER"
	CodeReferenceCollision  Code = "REFERENCE_COLLISION"
	CodeStorageConflict     Code = "STORAGE_CONFLICT"
	CodeLedgerAppendFailed  Code = "LEDGER_APPEND_FAILED"
	CodeTransactionNotFound Code = "TRANSACTION_NOT_FOUND"
	CodeWalletExists        Code = "WALLET_EXISTS"
	CodeInvalidRequest      Code = "INVALID_REQUEST"
	CodeInternal            Code = "INTERNAL"
)

// Transient reports whether retrying the same request may succeed.
func (c Code) Transient() bool {
	switch c {
	case CodeReferenceCollision, CodeStorageConflict:
		return true
	default:
		return false
	}
}

type DomainError struct {
	Code    Code
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError with the same code, so the package-level
// sentinels work with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a DomainError with a custom message.
func New(code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Wrap attaches a cause to a DomainError.
func Wrap(code Code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first DomainError in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsTransient reports whether err is a retryable domain failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return CodeOf(err).Transient()
}

// MessageOf returns the client-facing message of the first DomainError in
// err's chain, without the wrapped cause.
func MessageOf(err error) string {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
