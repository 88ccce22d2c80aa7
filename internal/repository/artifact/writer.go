package artifact

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/telforge/phonegen/internal/domain/manifest"
)

// Writer streams generated lines into size-capped text files.
//
// A file is sealed and the next one opened before writing a line that
// would push it past the byte threshold, so no file overshoots the cap
// unless a single line is itself larger than the threshold. Lines are
// never split across files.
type Writer struct {
	dir       string
	threshold int64
}

// NewWriter creates a writer that places files under dir. A threshold
// of zero or less disables rolling.
func NewWriter(dir string, threshold int64) *Writer {
	return &Writer{dir: dir, threshold: threshold}
}

// WriteAll writes lines in order under base and reports the resulting
// files. A single file is named {base}.txt; once output rolls over,
// files are named {base}_part{n}.txt counting from 1 and the first file
// is renamed to carry the suffix. On error every file written so far is
// removed and the manifest is empty.
func (w *Writer) WriteAll(base string, lines []string) (manifest.Manifest, error) {
	var man manifest.Manifest
	if len(lines) == 0 {
		return man, nil
	}

	r := &roller{dir: w.dir, base: base, threshold: w.threshold}
	for _, line := range lines {
		if err := r.writeLine(line); err != nil {
			r.discard()
			return manifest.Manifest{}, err
		}
	}
	if err := r.closeCurrent(); err != nil {
		r.discard()
		return manifest.Manifest{}, err
	}
	for _, f := range r.closed {
		man.Append(f.name, f.bytes, f.lines)
	}
	return man, nil
}

type closedFile struct {
	name  string
	bytes int64
	lines int64
}

// roller tracks the file currently being filled and the ones already
// sealed during a single WriteAll run.
type roller struct {
	dir       string
	base      string
	threshold int64

	file  *os.File
	buf   *bufio.Writer
	name  string
	bytes int64
	lines int64

	closed []closedFile
}

func (r *roller) writeLine(line string) error {
	need := int64(len(line)) + 1
	if r.file != nil && r.threshold > 0 && r.bytes > 0 && r.bytes+need > r.threshold {
		if err := r.roll(); err != nil {
			return err
		}
	}
	if r.file == nil {
		if err := r.open(); err != nil {
			return err
		}
	}
	if _, err := r.buf.WriteString(line); err != nil {
		return fmt.Errorf("write %s: %w", r.name, err)
	}
	if err := r.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("write %s: %w", r.name, err)
	}
	r.bytes += need
	r.lines++
	return nil
}

// roll seals the current file. The first rollover also renames the
// initial {base}.txt to {base}_part1.txt so part numbering stays
// consistent across the whole set.
func (r *roller) roll() error {
	if err := r.closeCurrent(); err != nil {
		return err
	}
	if len(r.closed) == 1 {
		renamed := r.base + "_part1.txt"
		from := filepath.Join(r.dir, r.closed[0].name)
		if err := os.Rename(from, filepath.Join(r.dir, renamed)); err != nil {
			return fmt.Errorf("rename %s: %w", r.closed[0].name, err)
		}
		r.closed[0].name = renamed
	}
	return nil
}

func (r *roller) open() error {
	name := r.base + ".txt"
	if n := len(r.closed); n > 0 {
		name = fmt.Sprintf("%s_part%d.txt", r.base, n+1)
	}
	f, err := os.OpenFile(filepath.Join(r.dir, name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	r.file = f
	r.buf = bufio.NewWriter(f)
	r.name = name
	r.bytes = 0
	r.lines = 0
	return nil
}

func (r *roller) closeCurrent() error {
	if r.file == nil {
		return nil
	}
	if err := r.buf.Flush(); err != nil {
		r.file.Close()
		return fmt.Errorf("flush %s: %w", r.name, err)
	}
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", r.name, err)
	}
	r.closed = append(r.closed, closedFile{name: r.name, bytes: r.bytes, lines: r.lines})
	r.file = nil
	r.buf = nil
	return nil
}

// discard abandons the run, removing every file written so far.
func (r *roller) discard() {
	if r.file != nil {
		r.file.Close()
		os.Remove(filepath.Join(r.dir, r.name))
		r.file = nil
	}
	for _, f := range r.closed {
		os.Remove(filepath.Join(r.dir, f.name))
	}
	r.closed = nil
}
