package trailing

import (
	"regexp"

	"github.com/telforge/phonegen/internal/domain"
)

var (
	fixed4Regex = regexp.MustCompile(`^[0-9]{4}$`)
	fixed3Regex = regexp.MustCompile(`^[0-9]{3}$`)
)

// Kind discriminates trailing rules.
type Kind string

const (
	// KindFixed pins all 4 trailing digits.
	KindFixed Kind = "fixed"
	// KindFixedHigh pins the high 3 trailing digits; the low digit runs 0-9.
	KindFixedHigh Kind = "fixed_high"
	// KindFree leaves all 4 trailing digits free (0000-9999).
	KindFree Kind = "free"
)

// Rule governs how the final 4 digits of a generated number vary.
// Immutable value object; the zero value produces no variants.
type Rule struct {
	kind   Kind
	digits string
}

// NewFixed creates a rule pinning all 4 trailing digits.
func NewFixed(digits string) (Rule, error) {
	if !fixed4Regex.MatchString(digits) {
		return Rule{}, domain.NewValidation("trailingFixed4", "must be exactly 4 digits")
	}
	return Rule{kind: KindFixed, digits: digits}, nil
}

// NewFixedHigh creates a rule pinning the high 3 trailing digits.
func NewFixedHigh(digits string) (Rule, error) {
	if !fixed3Regex.MatchString(digits) {
		return Rule{}, domain.NewValidation("trailingFixed3", "must be exactly 3 digits")
	}
	return Rule{kind: KindFixedHigh, digits: digits}, nil
}

// Free creates a rule enumerating the full 0000-9999 range.
func Free() Rule {
	return Rule{kind: KindFree}
}

// Derive picks the rule for a request: Fixed when fixed4 is given, FixedHigh
// when fixed3 is given, Free when neither. The two are mutually exclusive.
func Derive(fixed4, fixed3 string) (Rule, error) {
	switch {
	case fixed4 != "" && fixed3 != "":
		return Rule{}, domain.NewValidation("trailing", "trailingFixed4 and trailingFixed3 are mutually exclusive")
	case fixed4 != "":
		return NewFixed(fixed4)
	case fixed3 != "":
		return NewFixedHigh(fixed3)
	default:
		return Free(), nil
	}
}

// Kind returns the rule discriminator.
func (r Rule) Kind() Kind { return r.kind }

// FixedDigits returns the pinned digits ("" for Free).
func (r Rule) FixedDigits() string { return r.digits }

// Variants returns how many trailing combinations the rule produces per
// allocation record: 1, 10 or 10000.
func (r Rule) Variants() int64 {
	switch r.kind {
	case KindFixed:
		return 1
	case KindFixedHigh:
		return 10
	case KindFree:
		return 10000
	default:
		return 0
	}
}

// AppendDigits appends the 4 trailing digits for the given variant index.
// The variant must be in [0, Variants()); ascending variants yield ascending
// digit strings.
func (r Rule) AppendDigits(dst []byte, variant int64) []byte {
	switch r.kind {
	case KindFixed:
		return append(dst, r.digits...)
	case KindFixedHigh:
		dst = append(dst, r.digits...)
		return append(dst, byte('0'+variant))
	default:
		return append(dst,
			byte('0'+variant/1000%10),
			byte('0'+variant/100%10),
			byte('0'+variant/10%10),
			byte('0'+variant%10),
		)
	}
}

// Digits returns the 4 trailing digits for the given variant index.
func (r Rule) Digits(variant int64) string {
	return string(r.AppendDigits(make([]byte, 0, 4), variant))
}

// Label is the human-readable tag used in artifact names: the pinned digits,
// or "ALL" when the trailing range is free.
func (r Rule) Label() string {
	if r.digits != "" {
		return r.digits
	}
	return "ALL"
}
