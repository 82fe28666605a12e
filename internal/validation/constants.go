package validation

const (
	// Amount limits, in minor units
	MinTransactionAmount int64 = 1
	MaxTransactionAmount int64 = 100_000_000

	// Password requirements
	MinPasswordLength = 8
	MaxPasswordLength = 72

	// String lengths
	MaxNameLength      = 100
	MaxReferenceLength = 64
)
