package catalog

import "fmt"

// Partition is an opaque handle describing one independently readable chunk
// of a table. Only the table that produced it knows how to interpret it.
//
// Version pins the contents the handle was planned against: reading it later
// returns those contents, not rows written since.
type Partition struct {
	Name    string `json:"name"`
	Version uint64 `json:"version"`
}

func (p Partition) String() string {
	return fmt.Sprintf("%s@%d", p.Name, p.Version)
}

// Partitions is the ordered partition list of a read plan. Once assigned to a
// plan it is never modified; Chunks returns sub-slices that share storage.
type Partitions []Partition

// Chunks splits the list into consecutive chunks of at most size elements.
// The last chunk may be shorter. An empty list yields no chunks.
func (ps Partitions) Chunks(size int) []Partitions {
	if size <= 0 || len(ps) == 0 {
		return nil
	}
	out := make([]Partitions, 0, (len(ps)+size-1)/size)
	for start := 0; start < len(ps); start += size {
		end := min(start+size, len(ps))
		out = append(out, ps[start:end:end])
	}
	return out
}

// Statistics summarises a read for planning decisions.
type Statistics struct {
	ReadRows  uint64 `json:"read_rows"`
	ReadBytes uint64 `json:"read_bytes"`
}

func (s Statistics) String() string {
	return fmt.Sprintf("rows=%d, bytes=%d", s.ReadRows, s.ReadBytes)
}
