package core

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// A Shard assigns test classes to one partition of a parallel test run.
// The zero value disables sharding entirely.
// Classes (not methods) are the unit of assignment so intra-class ordering
// is preserved on each shard, and the hash is stable across processes and
// platforms so every shard agrees on the partition.
type Shard struct {
	Index int
	Total int
}

// Enabled returns true if this shard actually filters anything.
func (s Shard) Enabled() bool {
	return s.Total > 0
}

// Contains returns true if the given test class belongs to this shard.
func (s Shard) Contains(className string) bool {
	if !s.Enabled() {
		return true
	}
	return xxhash.Sum64String(className)%uint64(s.Total) == uint64(s.Index)
}

// String implements the fmt.Stringer interface.
func (s Shard) String() string {
	return fmt.Sprintf("%d/%d", s.Index, s.Total)
}

// UnmarshalFlag implements the flags.Unmarshaler interface to parse
// specifications of the form 2/5.
func (s *Shard) UnmarshalFlag(in string) error {
	if n, err := fmt.Sscanf(in, "%d/%d", &s.Index, &s.Total); err != nil || n != 2 {
		return fmt.Errorf("Invalid shard %q, should be of the form 2/5", in)
	} else if s.Total <= 0 || s.Index < 0 || s.Index >= s.Total {
		return fmt.Errorf("Invalid shard %q, index must be in the range 0..%d", in, s.Total-1)
	}
	return nil
}
