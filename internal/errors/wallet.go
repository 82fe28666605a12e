package errors

var (
	ErrWalletNotFound = &DomainError{
		Code:    CodeWalletNotFound,
		Message: "wallet not found",
	}
	ErrInvalidAmount = &DomainError{
		Code:    CodeInvalidAmount,
		Message: "amount must be a positive number of minor units",
	}
	ErrInsufficientFunds = &DomainError{
		Code:    CodeInsufficientFunds,
		Message: "insufficient balance",
	}
	ErrSelfTransfer = &DomainError{
		Code:    CodeSelfTransfer,
		Message: "cannot transfer money to your own wallet",
	}
	ErrWalletExists = &DomainError{
		Code:    CodeWalletExists,
		Message: "user already has a wallet",
	}
)
