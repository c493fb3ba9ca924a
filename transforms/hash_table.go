package transforms

import (
	"github.com/fusedb/fusedb/common"
)

// GroupHashTable maps grouping keys to per-group values. Keys are the
// unambiguous byte encoding of the group-by values; groups are iterated in the
// order they were first seen.
type GroupHashTable[T any] struct {
	index  map[string]int
	groups []groupEntry[T]

	// scratch is reused to encode keys during lookups.
	scratch []byte
}

type groupEntry[T any] struct {
	key   []common.Value
	value T
}

func NewGroupHashTable[T any]() *GroupHashTable[T] {
	return &GroupHashTable[T]{index: make(map[string]int)}
}

// GetOrInsert returns the value of the group identified by key, creating it
// with init on first sight.
func (ht *GroupHashTable[T]) GetOrInsert(key []common.Value, init func() T) T {
	ht.scratch = ht.scratch[:0]
	for _, v := range key {
		ht.scratch = v.AppendKey(ht.scratch)
	}
	// The compiler avoids allocating for a map lookup keyed by string(bytes).
	if i, ok := ht.index[string(ht.scratch)]; ok {
		return ht.groups[i].value
	}
	owned := make([]common.Value, len(key))
	copy(owned, key)
	ht.index[string(ht.scratch)] = len(ht.groups)
	ht.groups = append(ht.groups, groupEntry[T]{key: owned, value: init()})
	return ht.groups[len(ht.groups)-1].value
}

func (ht *GroupHashTable[T]) Len() int {
	return len(ht.groups)
}

// Iterate calls iter for every group in first-seen order.
func (ht *GroupHashTable[T]) Iterate(iter func(key []common.Value, value T)) {
	for _, g := range ht.groups {
		iter(g.key, g.value)
	}
}
