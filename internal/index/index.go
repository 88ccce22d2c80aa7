package index

import (
	"sort"

	"github.com/telforge/phonegen/internal/domain"
	"github.com/telforge/phonegen/internal/domain/record"
)

type locationKey struct {
	province string
	city     string
}

// Index is the immutable in-memory lookup over the carrier allocation table,
// grouped by (province, city). Built once at startup and never mutated, so
// it is safe to share by reference across all concurrent requests.
type Index struct {
	byLocation map[locationKey][]record.Record
	provinces  []string
	cities     map[string][]string
	size       int
}

// New builds the index. It fails with a BuildError if two records share the
// same (prefix, middleSegment) identity, since a duplicate block would be
// enumerated twice.
func New(records []record.Record) (*Index, error) {
	byLocation := make(map[locationKey][]record.Record)
	seen := make(map[string]bool, len(records))

	for _, rec := range records {
		if seen[rec.Key()] {
			return nil, domain.NewBuild(rec.Prefix(), rec.MiddleSegment())
		}
		seen[rec.Key()] = true

		key := locationKey{province: rec.Province(), city: rec.City()}
		byLocation[key] = append(byLocation[key], rec)
	}

	cities := make(map[string]map[string]bool)
	for key, group := range byLocation {
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].MiddleSegment() != group[j].MiddleSegment() {
				return group[i].MiddleSegment() < group[j].MiddleSegment()
			}
			return group[i].Operator() < group[j].Operator()
		})
		if cities[key.province] == nil {
			cities[key.province] = make(map[string]bool)
		}
		cities[key.province][key.city] = true
	}

	provinces := make([]string, 0, len(cities))
	cityLists := make(map[string][]string, len(cities))
	for province, set := range cities {
		provinces = append(provinces, province)
		list := make([]string, 0, len(set))
		for city := range set {
			list = append(list, city)
		}
		sort.Strings(list)
		cityLists[province] = list
	}
	sort.Strings(provinces)

	return &Index{
		byLocation: byLocation,
		provinces:  provinces,
		cities:     cityLists,
		size:       len(records),
	}, nil
}

// Lookup returns the records attributed to (province, city) whose carrier is
// in operators (empty operators matches any carrier). Records come back
// sorted ascending by middle segment, ties by operator code. An empty result
// is a valid outcome: the combination simply has no coverage.
func (ix *Index) Lookup(province, city string, operators []record.Operator) []record.Record {
	group := ix.byLocation[locationKey{province: province, city: city}]
	if len(group) == 0 {
		return nil
	}

	if len(operators) == 0 {
		out := make([]record.Record, len(group))
		copy(out, group)
		return out
	}

	wanted := make(map[record.Operator]bool, len(operators))
	for _, op := range operators {
		wanted[op] = true
	}

	var out []record.Record
	for _, rec := range group {
		if wanted[rec.Operator()] {
			out = append(out, rec)
		}
	}
	return out
}

// Provinces returns the distinct provinces covered by the table, sorted.
func (ix *Index) Provinces() []string {
	out := make([]string, len(ix.provinces))
	copy(out, ix.provinces)
	return out
}

// Cities returns the distinct cities of a province, sorted. Unknown
// provinces yield an empty list.
func (ix *Index) Cities(province string) []string {
	list := ix.cities[province]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Size returns the number of records the index was built from.
func (ix *Index) Size() int { return ix.size }
