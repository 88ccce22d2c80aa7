package catalog

// Service exposes the locations available for filter building.
type Service struct {
	index Index
}

// New creates a catalog service.
func New(index Index) *Service {
	return &Service{index: index}
}

// Provinces returns all covered provinces, sorted.
func (s *Service) Provinces() []string {
	return s.index.Provinces()
}

// Cities returns the covered cities of province, sorted. An unknown
// province yields an empty list.
func (s *Service) Cities(province string) []string {
	return s.index.Cities(province)
}

// Blocks returns the number of allocation records behind the catalog.
func (s *Service) Blocks() int {
	return s.index.Size()
}
