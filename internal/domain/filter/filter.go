package filter

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/telforge/phonegen/internal/domain"
	"github.com/telforge/phonegen/internal/domain/record"
	"github.com/telforge/phonegen/internal/domain/trailing"
)

var prefixRegex = regexp.MustCompile(`^[0-9]{3}$`)

// Filter is a validated generation request: the number-block family to
// enumerate and the rule for its trailing digits.
// Immutable value object.
type Filter struct {
	prefix    string
	province  string
	city      string
	operators []record.Operator
	rule      trailing.Rule
}

// New validates and creates a Filter.
// Operators may be empty (any carrier); codes are deduplicated and sorted.
// At most one of trailingFixed4 / trailingFixed3 may be non-empty.
func New(
	prefix, province, city string,
	operators []int,
	trailingFixed4, trailingFixed3 string,
) (Filter, error) {
	if !prefixRegex.MatchString(prefix) {
		return Filter{}, domain.NewValidation("prefix", "must be exactly 3 digits")
	}
	if province == "" {
		return Filter{}, domain.NewValidation("province", "is required")
	}
	if city == "" {
		return Filter{}, domain.NewValidation("city", "is required")
	}

	ops := make([]record.Operator, 0, len(operators))
	seen := make(map[record.Operator]bool, len(operators))
	for _, code := range operators {
		op := record.Operator(code)
		if !op.IsValid() {
			return Filter{}, domain.NewValidation("operators", fmt.Sprintf("invalid operator code %d", code))
		}
		if !seen[op] {
			seen[op] = true
			ops = append(ops, op)
		}
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })

	rule, err := trailing.Derive(trailingFixed4, trailingFixed3)
	if err != nil {
		return Filter{}, err
	}

	return Filter{
		prefix:    prefix,
		province:  province,
		city:      city,
		operators: ops,
		rule:      rule,
	}, nil
}

// Prefix returns the fixed leading 3 digits.
func (f Filter) Prefix() string { return f.prefix }

// Province returns the requested province.
func (f Filter) Province() string { return f.province }

// City returns the requested city.
func (f Filter) City() string { return f.city }

// Operators returns the requested carrier codes, sorted ascending.
// Empty means any carrier.
func (f Filter) Operators() []record.Operator {
	out := make([]record.Operator, len(f.operators))
	copy(out, f.operators)
	return out
}

// MatchesOperator reports whether a record with the given carrier code
// passes the filter. An empty operator set matches everything.
func (f Filter) MatchesOperator(op record.Operator) bool {
	if len(f.operators) == 0 {
		return true
	}
	for _, o := range f.operators {
		if o == op {
			return true
		}
	}
	return false
}

// Rule returns the trailing-digit rule derived from the request.
func (f Filter) Rule() trailing.Rule { return f.rule }
