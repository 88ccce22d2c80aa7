package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a malformed request field.
	ErrValidation = errors.New("validation failed")
	// ErrLimitExceeded signals a plan larger than the configured ceiling.
	ErrLimitExceeded = errors.New("generation limit exceeded")
	// ErrDuplicateRecord signals conflicting rows in the allocation source.
	ErrDuplicateRecord = errors.New("duplicate allocation record")
	// ErrPartitionFailed signals a failed enumeration partition.
	ErrPartitionFailed = errors.New("partition failed")
	// ErrArtifactNotFound signals a missing or expired output artifact.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrUnauthorized signals a missing or invalid session.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError wraps ErrValidation with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation creates a validation error for a single field.
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// LimitExceededError wraps ErrLimitExceeded with the computed plan size,
// so the caller can report how far the request overshot and narrow it.
type LimitExceededError struct {
	Count   int64
	Ceiling int64
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s: plan holds %d numbers, ceiling is %d", ErrLimitExceeded.Error(), e.Count, e.Ceiling)
}

func (e *LimitExceededError) Unwrap() error { return ErrLimitExceeded }

// NewLimitExceeded creates a limit error carrying the computed count.
func NewLimitExceeded(count, ceiling int64) error {
	return &LimitExceededError{Count: count, Ceiling: ceiling}
}

// BuildError wraps ErrDuplicateRecord with the conflicting key pair.
// Raised at index build time; fatal to startup, never per-request.
type BuildError struct {
	Prefix        string
	MiddleSegment string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: prefix %s, middle segment %s", ErrDuplicateRecord.Error(), e.Prefix, e.MiddleSegment)
}

func (e *BuildError) Unwrap() error { return ErrDuplicateRecord }

// NewBuild creates a build error for a duplicate (prefix, middleSegment) pair.
func NewBuild(prefix, middleSegment string) error {
	return &BuildError{Prefix: prefix, MiddleSegment: middleSegment}
}

// PartitionError wraps a worker failure with the ordinal of the failing
// partition. The whole request fails; a retry is safe because enumeration
// is a pure function of the plan.
type PartitionError struct {
	Partition int
	Err       error
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("%s: partition %d: %v", ErrPartitionFailed.Error(), e.Partition, e.Err)
}

func (e *PartitionError) Unwrap() []error { return []error{ErrPartitionFailed, e.Err} }

// NewPartition creates a partition error for the given partition ordinal.
func NewPartition(partition int, err error) error {
	return &PartitionError{Partition: partition, Err: err}
}
