package record

import (
	"fmt"
	"regexp"

	"github.com/telforge/phonegen/internal/domain"
)

var (
	prefixRegex = regexp.MustCompile(`^[0-9]{3}$`)
	middleRegex = regexp.MustCompile(`^[0-9]{4}$`)
)

// Operator is the carrier code an allocation row is attributed to (1-5).
type Operator int

// Carrier codes as encoded in the allocation table.
const (
	OperatorMobile    Operator = 1
	OperatorUnicom    Operator = 2
	OperatorTelecom   Operator = 3
	OperatorBroadcast Operator = 4
	OperatorVirtual   Operator = 5
)

// IsValid checks if the code is one of the supported carriers.
func (o Operator) IsValid() bool {
	return o >= OperatorMobile && o <= OperatorVirtual
}

// Record is one row of the carrier allocation table: a number block keyed by
// (prefix, middleSegment) and attributed to a province, city and operator.
// Immutable value object.
type Record struct {
	prefix        string
	middleSegment string
	province      string
	city          string
	operator      Operator
}

// New validates and creates a Record.
// Prefix: exactly 3 digits. MiddleSegment: exactly 4 digits.
func New(prefix, middleSegment, province, city string, operator Operator) (Record, error) {
	if !prefixRegex.MatchString(prefix) {
		return Record{}, domain.NewValidation("prefix", "must be exactly 3 digits")
	}
	if !middleRegex.MatchString(middleSegment) {
		return Record{}, domain.NewValidation("middleSegment", "must be exactly 4 digits")
	}
	if province == "" {
		return Record{}, domain.NewValidation("province", "is required")
	}
	if city == "" {
		return Record{}, domain.NewValidation("city", "is required")
	}
	if !operator.IsValid() {
		return Record{}, domain.NewValidation("operator", fmt.Sprintf("code %d outside 1-5", int(operator)))
	}

	return Record{
		prefix:        prefix,
		middleSegment: middleSegment,
		province:      province,
		city:          city,
		operator:      operator,
	}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(prefix, middleSegment, province, city string, operator Operator) Record {
	return Record{
		prefix:        prefix,
		middleSegment: middleSegment,
		province:      province,
		city:          city,
		operator:      operator,
	}
}

// Prefix returns the leading 3 digits of the number block.
func (r Record) Prefix() string { return r.prefix }

// MiddleSegment returns the 4 digits following the prefix.
func (r Record) MiddleSegment() string { return r.middleSegment }

// Province returns the province the block is attributed to.
func (r Record) Province() string { return r.province }

// City returns the city the block is attributed to.
func (r Record) City() string { return r.city }

// Operator returns the carrier code.
func (r Record) Operator() Operator { return r.operator }

// Key returns the identity of the block. Both parts are fixed-width digit
// strings, so plain concatenation is collision-free.
func (r Record) Key() string { return r.prefix + r.middleSegment }
