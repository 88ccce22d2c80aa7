package generate

import (
	"context"
	"time"

	"github.com/telforge/phonegen/internal/domain/manifest"
	"github.com/telforge/phonegen/internal/domain/plan"
	"github.com/telforge/phonegen/internal/domain/record"
)

// Index answers allocation lookups for plan assembly.
type Index interface {
	Lookup(province, city string, operators []record.Operator) []record.Record
}

// Dispatcher enumerates plan slices across a worker pool.
type Dispatcher interface {
	Run(ctx context.Context, p plan.Plan, partitions int) ([][]string, error)
	Workers() int
}

// ArtifactStore persists enumerated numbers as downloadable files.
type ArtifactStore interface {
	BaseName(prefix, province, city, label string, at time.Time) string
	Write(base string, lines []string) (manifest.Manifest, error)
}
