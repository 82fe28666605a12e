package errors

var (
	ErrReferenceCollision = &DomainError{
		Code:    CodeReferenceCollision,
		Message: "could not allocate a unique transaction reference",
	}
	ErrStorageConflict = &DomainError{
		Code:    CodeStorageConflict,
		Message: "storage conflict, retry the operation",
	}
	ErrLedgerAppendFailed = &DomainError{
		Code:    CodeLedgerAppendFailed,
		Message: "failed to record transaction",
	}
	ErrTransactionNotFound = &DomainError{
		Code:    CodeTransactionNotFound,
		Message: "transaction not found",
	}
)
