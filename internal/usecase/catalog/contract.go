package catalog

// Index lists the locations covered by the allocation table.
type Index interface {
	Provinces() []string
	Cities(province string) []string
	Size() int
}
