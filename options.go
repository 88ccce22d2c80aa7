package phonegen

import (
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	dbPath      string
	outputDir   string
	ceiling     int64
	workers     int
	maxFileSize int64
	logger      *zap.Logger
}

func defaultConfig() clientConfig {
	return clientConfig{
		dbPath:      filepath.Join("data", "phone_location.db"),
		outputDir:   "downloads",
		ceiling:     10_000_000,
		workers:     runtime.NumCPU(),
		maxFileSize: 20 << 20,
	}
}

// WithDatabase sets the allocation table path.
func WithDatabase(path string) Option {
	return func(c *clientConfig) { c.dbPath = path }
}

// WithOutputDir sets the directory generated files are written to.
func WithOutputDir(dir string) Option {
	return func(c *clientConfig) { c.outputDir = dir }
}

// WithCeiling caps the numbers a single Generate call may produce.
// Zero disables the cap.
func WithCeiling(n int64) Option {
	return func(c *clientConfig) { c.ceiling = n }
}

// WithWorkers sets the enumeration worker pool size.
func WithWorkers(n int) Option {
	return func(c *clientConfig) { c.workers = n }
}

// WithMaxFileSize sets the per-file byte threshold before the output
// rolls over into the next part file.
func WithMaxFileSize(bytes int64) Option {
	return func(c *clientConfig) { c.maxFileSize = bytes }
}

// WithLogger sets the logger. Silent by default.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
