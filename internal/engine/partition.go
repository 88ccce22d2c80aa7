package engine

// Partition is a contiguous sub-range [Start, End) of a plan's offset space,
// assigned to one worker.
type Partition struct {
	Ordinal int
	Start   int64
	End     int64
}

// Len returns the number of offsets in the partition.
func (p Partition) Len() int64 { return p.End - p.Start }

// IsEmpty reports whether the partition covers no offsets.
func (p Partition) IsEmpty() bool { return p.Start == p.End }

// Split divides [0, total) into count contiguous, gapless, non-overlapping
// partitions with sizes as equal as integer division allows; the remainder
// goes to the leading partitions. A count below 1 is treated as 1.
// Partitions at the tail may be empty when total < count.
func Split(total int64, count int) []Partition {
	if count < 1 {
		count = 1
	}

	base := total / int64(count)
	rem := total % int64(count)

	parts := make([]Partition, count)
	var cursor int64
	for i := range parts {
		size := base
		if int64(i) < rem {
			size++
		}
		parts[i] = Partition{Ordinal: i, Start: cursor, End: cursor + size}
		cursor += size
	}
	return parts
}
