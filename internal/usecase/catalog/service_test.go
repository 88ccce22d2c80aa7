package catalog

import "testing"

// --- Mocks ---

type stubIndex struct {
	provinces []string
	cities    map[string][]string
	size      int
}

func (s *stubIndex) Provinces() []string { return s.provinces }

func (s *stubIndex) Cities(province string) []string { return s.cities[province] }

func (s *stubIndex) Size() int { return s.size }

// --- Tests ---

func TestProvinces(t *testing.T) {
	svc := New(&stubIndex{provinces: []string{"广东", "湖北"}, size: 4})

	got := svc.Provinces()
	if len(got) != 2 || got[0] != "广东" || got[1] != "湖北" {
		t.Errorf("Provinces() = %v", got)
	}
	if svc.Blocks() != 4 {
		t.Errorf("Blocks() = %d, want 4", svc.Blocks())
	}
}

func TestCities(t *testing.T) {
	svc := New(&stubIndex{cities: map[string][]string{
		"湖北": {"武汉", "宜昌"},
	}})

	if got := svc.Cities("湖北"); len(got) != 2 || got[0] != "武汉" {
		t.Errorf("Cities(湖北) = %v", got)
	}
	if got := svc.Cities("不存在"); len(got) != 0 {
		t.Errorf("Cities(unknown) = %v, want empty", got)
	}
}
