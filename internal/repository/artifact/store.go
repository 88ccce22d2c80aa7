// Package artifact keeps generated number files on disk, names them,
// serves them for download and expires them after a retention window.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/telforge/phonegen/internal/domain"
	"github.com/telforge/phonegen/internal/domain/manifest"
)

// baseSanitizer strips path separators out of location names so a base
// name can never leave the download directory.
var baseSanitizer = strings.NewReplacer("/", "_", "\\", "_")

// Store manages the download directory.
type Store struct {
	dir    string
	ttl    time.Duration
	writer *Writer
	logger *zap.Logger
}

// NewStore creates the download directory if needed. A ttl of zero or
// less disables expiry.
func NewStore(dir string, threshold int64, ttl time.Duration, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir %s: %w", dir, err)
	}
	return &Store{dir: dir, ttl: ttl, writer: NewWriter(dir, threshold), logger: logger}, nil
}

// Dir returns the download directory path.
func (s *Store) Dir() string { return s.dir }

// BaseName builds the file base for one generation run:
// {prefix}_{province}_{city}_{label}_{timestamp}_{id}. The short random
// id keeps concurrent runs with identical filters apart.
func (s *Store) BaseName(prefix, province, city, label string, at time.Time) string {
	return strings.Join([]string{
		prefix,
		baseSanitizer.Replace(province),
		baseSanitizer.Replace(city),
		baseSanitizer.Replace(label),
		at.Format("20060102_150405"),
		uuid.NewString()[:8],
	}, "_")
}

// Write persists lines under base and reports the resulting files.
func (s *Store) Write(base string, lines []string) (manifest.Manifest, error) {
	man, err := s.writer.WriteAll(base, lines)
	if err != nil {
		return manifest.Manifest{}, err
	}
	if !man.IsEmpty() {
		s.logger.Info("artifact written",
			zap.String("base", base),
			zap.Int("files", man.FileCount()),
			zap.Int64("lines", man.TotalLines),
			zap.String("size", humanize.IBytes(uint64(man.TotalBytes()))),
		)
	}
	return man, nil
}

// Open returns the named artifact for download. Names that would escape
// the download directory and files past their expiry behave as missing.
func (s *Store) Open(name string) (*os.File, os.FileInfo, error) {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) {
		return nil, nil, domain.ErrArtifactNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, domain.ErrArtifactNotFound
		}
		return nil, nil, fmt.Errorf("open artifact %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat artifact %s: %w", name, err)
	}
	if info.IsDir() || s.expired(info.ModTime(), time.Now()) {
		f.Close()
		return nil, nil, domain.ErrArtifactNotFound
	}
	return f, info, nil
}

// Sweep removes artifacts whose modification time is past the retention
// window. It reports the number of files removed and the bytes
// reclaimed.
func (s *Store) Sweep(now time.Time) (int, int64, error) {
	if s.ttl <= 0 {
		return 0, 0, nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read download dir: %w", err)
	}
	var (
		removed   int
		reclaimed int64
	)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !s.expired(info.ModTime(), now) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.logger.Warn("remove expired artifact", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		removed++
		reclaimed += info.Size()
	}
	if removed > 0 {
		s.logger.Info("expired artifacts swept",
			zap.Int("removed", removed),
			zap.String("reclaimed", humanize.IBytes(uint64(reclaimed))),
		)
	}
	return removed, reclaimed, nil
}

// Ping verifies the download directory is writable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.CreateTemp(s.dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("download dir not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return nil
}

func (s *Store) expired(mod, now time.Time) bool {
	return s.ttl > 0 && now.Sub(mod) > s.ttl
}
