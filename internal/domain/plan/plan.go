package plan

import (
	"fmt"
	"sort"

	"github.com/telforge/phonegen/internal/domain"
	"github.com/telforge/phonegen/internal/domain/record"
	"github.com/telforge/phonegen/internal/domain/trailing"
)

// Plan is a fully resolved enumeration: the ordered candidate records, the
// trailing rule, and the exact number of lines the request will produce.
// Immutable once built; safe to share by reference across workers.
type Plan struct {
	prefix     string
	candidates []record.Record
	rule       trailing.Rule
	total      int64
}

// New builds a Plan and checks its size against the ceiling before any
// enumeration work happens. A ceiling of 0 means unlimited. Candidates are
// copied and ordered ascending by middle segment, ties by operator code, so
// the enumeration order never depends on how the caller assembled the slice.
// Zero candidates is a valid plan with a total of 0.
func New(prefix string, candidates []record.Record, rule trailing.Rule, ceiling int64) (Plan, error) {
	ordered := make([]record.Record, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].MiddleSegment() != ordered[j].MiddleSegment() {
			return ordered[i].MiddleSegment() < ordered[j].MiddleSegment()
		}
		return ordered[i].Operator() < ordered[j].Operator()
	})

	total := int64(len(ordered)) * rule.Variants()
	if ceiling > 0 && total > ceiling {
		return Plan{}, domain.NewLimitExceeded(total, ceiling)
	}

	return Plan{
		prefix:     prefix,
		candidates: ordered,
		rule:       rule,
		total:      total,
	}, nil
}

// Prefix returns the fixed leading 3 digits of every generated number.
func (p Plan) Prefix() string { return p.prefix }

// Rule returns the trailing-digit rule.
func (p Plan) Rule() trailing.Rule { return p.rule }

// Candidates returns the ordered candidate records.
func (p Plan) Candidates() []record.Record {
	out := make([]record.Record, len(p.candidates))
	copy(out, p.candidates)
	return out
}

// CandidateCount returns the number of candidate records.
func (p Plan) CandidateCount() int { return len(p.candidates) }

// Total returns the exact number of lines the plan enumerates.
func (p Plan) Total() int64 { return p.total }

// IsEmpty reports whether the plan enumerates nothing.
func (p Plan) IsEmpty() bool { return p.total == 0 }

// Line maps a single offset to its 11-digit number.
func (p Plan) Line(offset int64) (string, error) {
	if offset < 0 || offset >= p.total {
		return "", fmt.Errorf("offset %d outside plan bounds [0, %d)", offset, p.total)
	}
	variants := p.rule.Variants()
	buf := make([]byte, 0, 11)
	buf = p.appendLine(buf, offset, variants)
	return string(buf), nil
}

// Slice enumerates the half-open offset range [start, end) in order.
// The mapping is pure: offset i yields record i/variants and trailing
// variant i%variants, so any partitioning of [0, Total()) reproduces the
// same global sequence.
func (p Plan) Slice(start, end int64) ([]string, error) {
	if start < 0 || start > end || end > p.total {
		return nil, fmt.Errorf("range [%d, %d) outside plan bounds [0, %d]", start, end, p.total)
	}

	variants := p.rule.Variants()
	out := make([]string, 0, end-start)
	buf := make([]byte, 0, 11)
	for i := start; i < end; i++ {
		buf = p.appendLine(buf[:0], i, variants)
		out = append(out, string(buf))
	}
	return out, nil
}

func (p Plan) appendLine(buf []byte, offset, variants int64) []byte {
	rec := p.candidates[offset/variants]
	buf = append(buf, p.prefix...)
	buf = append(buf, rec.MiddleSegment()...)
	return p.rule.AppendDigits(buf, offset%variants)
}
