package phonegen

import "github.com/telforge/phonegen/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation      = domain.ErrValidation
	ErrLimitExceeded   = domain.ErrLimitExceeded
	ErrDuplicateRecord = domain.ErrDuplicateRecord
	ErrPartitionFailed = domain.ErrPartitionFailed
)
