package manifest

// File describes one output artifact produced by a generation request.
type File struct {
	// Ordinal is the 1-based position of the file in the output sequence.
	Ordinal int
	// Name is the artifact file name, no directory component.
	Name  string
	Bytes int64
	Lines int64
}

// Manifest is the ordered description of the files produced by one request.
// Concatenating the files in ordinal order reproduces the plan's full
// enumeration sequence. An empty manifest is the valid outcome of an empty
// plan, not an error.
type Manifest struct {
	Files      []File
	TotalLines int64
}

// Append adds the next file, assigning the next ordinal (starting at 1).
func (m *Manifest) Append(name string, bytes, lines int64) {
	m.Files = append(m.Files, File{
		Ordinal: len(m.Files) + 1,
		Name:    name,
		Bytes:   bytes,
		Lines:   lines,
	})
	m.TotalLines += lines
}

// FileCount returns the number of output files.
func (m Manifest) FileCount() int { return len(m.Files) }

// TotalBytes returns the byte size summed across all files.
func (m Manifest) TotalBytes() int64 {
	var n int64
	for _, f := range m.Files {
		n += f.Bytes
	}
	return n
}

// IsEmpty reports whether the manifest describes no files.
func (m Manifest) IsEmpty() bool { return len(m.Files) == 0 }
