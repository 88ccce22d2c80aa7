package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func numberLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("138%08d", i)
	}
	return lines
}

func readArtifact(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestWriteAll_SingleFile(t *testing.T) {
	dir := t.TempDir()
	lines := numberLines(5)

	man, err := NewWriter(dir, 1<<20).WriteAll("138_虚拟_虚拟_ALL", lines)
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if man.FileCount() != 1 {
		t.Fatalf("files = %d, want 1", man.FileCount())
	}
	f := man.Files[0]
	if f.Ordinal != 1 || f.Name != "138_虚拟_虚拟_ALL.txt" {
		t.Errorf("file = %+v", f)
	}
	if f.Lines != 5 || f.Bytes != 5*12 {
		t.Errorf("lines = %d bytes = %d, want 5 and 60", f.Lines, f.Bytes)
	}
	want := strings.Join(lines, "\n") + "\n"
	if got := readArtifact(t, dir, f.Name); got != want {
		t.Errorf("content mismatch:\n got %q\nwant %q", got, want)
	}
	if names := dirEntries(t, dir); len(names) != 1 {
		t.Errorf("dir entries = %v, want exactly one file", names)
	}
}

func TestWriteAll_RollsBeforeThreshold(t *testing.T) {
	dir := t.TempDir()
	lines := numberLines(5)

	// Each line is 12 bytes with its newline, so exactly two fit in 24.
	man, err := NewWriter(dir, 24).WriteAll("138_b", lines)
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if man.FileCount() != 3 {
		t.Fatalf("files = %d, want 3", man.FileCount())
	}
	if _, err := os.Stat(filepath.Join(dir, "138_b.txt")); !os.IsNotExist(err) {
		t.Error("unsuffixed file should be renamed after first rollover")
	}

	var concat strings.Builder
	for i, f := range man.Files {
		wantName := fmt.Sprintf("138_b_part%d.txt", i+1)
		if f.Ordinal != i+1 || f.Name != wantName {
			t.Errorf("file %d = %+v, want ordinal %d name %s", i, f, i+1, wantName)
		}
		if f.Bytes > 24 {
			t.Errorf("%s has %d bytes, over the threshold", f.Name, f.Bytes)
		}
		concat.WriteString(readArtifact(t, dir, f.Name))
	}
	if man.Files[0].Lines != 2 || man.Files[1].Lines != 2 || man.Files[2].Lines != 1 {
		t.Errorf("line split = %d/%d/%d, want 2/2/1",
			man.Files[0].Lines, man.Files[1].Lines, man.Files[2].Lines)
	}
	if man.TotalLines != 5 {
		t.Errorf("TotalLines = %d, want 5", man.TotalLines)
	}
	if want := strings.Join(lines, "\n") + "\n"; concat.String() != want {
		t.Error("concatenated parts do not reproduce the sequence")
	}
}

func TestWriteAll_OversizedLineGetsOwnFile(t *testing.T) {
	dir := t.TempDir()
	oversized := strings.Repeat("9", 50)
	lines := []string{oversized, "13800000001", "13800000002"}

	man, err := NewWriter(dir, 40).WriteAll("big", lines)
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if man.FileCount() != 2 {
		t.Fatalf("files = %d, want 2", man.FileCount())
	}
	if man.Files[0].Lines != 1 || man.Files[0].Bytes != 51 {
		t.Errorf("oversized file = %+v, want 1 line of 51 bytes", man.Files[0])
	}
	if man.Files[1].Lines != 2 {
		t.Errorf("second file lines = %d, want 2", man.Files[1].Lines)
	}
	if got := readArtifact(t, dir, man.Files[0].Name); got != oversized+"\n" {
		t.Error("oversized line was split or altered")
	}
}

func TestWriteAll_Empty(t *testing.T) {
	dir := t.TempDir()

	man, err := NewWriter(dir, 24).WriteAll("void", nil)
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if !man.IsEmpty() || man.TotalLines != 0 {
		t.Errorf("manifest = %+v, want empty", man)
	}
	if names := dirEntries(t, dir); len(names) != 0 {
		t.Errorf("dir entries = %v, want none", names)
	}
}

func TestWriteAll_NoThreshold(t *testing.T) {
	dir := t.TempDir()
	lines := numberLines(1000)

	man, err := NewWriter(dir, 0).WriteAll("all", lines)
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if man.FileCount() != 1 {
		t.Fatalf("files = %d, want 1", man.FileCount())
	}
	if man.Files[0].Name != "all.txt" || man.Files[0].Lines != 1000 {
		t.Errorf("file = %+v", man.Files[0])
	}
}

func TestWriteAll_MissingDir(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "absent"), 100)

	if _, err := w.WriteAll("x", numberLines(1)); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
