package wallet

import "time"

// Operation names used for metrics and logs
const (
	OpFund     = "fund"
	OpWithdraw = "withdraw"
	OpTransfer = "transfer"
)

// Default configuration values
const (
	DefaultMaxReferenceAttempts = 5
	DefaultSideEffectTimeout    = 5 * time.Second
	ReferencePrefix             = "TX-"
)

// Operation results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)
