// Package handletable stores owning handles under small integer indices, for
// passing them through boundaries that carry only integers.
package handletable

import (
	"errors"
	"fmt"
	"sync"

	"github.com/partite-ai/checkedptr/checked"
)

const maxTableSize = 1 << 28

var (
	// ErrInvalidIndex is returned for index 0, out-of-range and freed indices.
	ErrInvalidIndex = errors.New("invalid table index")
	// ErrEmptyHandle is returned when adding an empty handle.
	ErrEmptyHandle = errors.New("empty handle")
	// ErrTableFull is returned when the table has no index left to hand out.
	ErrTableFull = errors.New("table size exceeded")
)

// Table owns the handles added to it until they are removed or dropped. Index
// 0 is never handed out.
type Table[T any] struct {
	mu      sync.Mutex
	entries []tableEntry[T]
	free    []uint32
}

type tableEntry[T any] struct {
	value *checked.Handle[T]
	set   bool
}

// New returns an empty table.
func New[T any]() *Table[T] {
	return &Table[T]{
		entries: []tableEntry[T]{
			{
				set: false,
			},
		},
	}
}

// Add moves h's ownership into the table and returns its index. h is left
// empty.
func (t *Table[T]) Add(h *checked.Handle[T]) (uint32, error) {
	if !h.Valid() {
		return 0, ErrEmptyHandle
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.free) > 0 {
		idx := t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
		t.entries[idx] = tableEntry[T]{
			value: h.Move(),
			set:   true,
		}
		return idx, nil
	}
	idx := uint32(len(t.entries))
	if idx >= maxTableSize {
		return 0, ErrTableFull
	}
	t.entries = append(t.entries, tableEntry[T]{
		value: h.Move(),
		set:   true,
	})
	return idx, nil
}

// Get returns a new owner of the handle at idx. The table keeps its own.
func (t *Table[T]) Get(idx uint32) (*checked.Handle[T], error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, err := t.entry(idx)
	if err != nil {
		return nil, err
	}
	return entry.value.Clone(), nil
}

// Remove moves the handle at idx out of the table and frees the index.
func (t *Table[T]) Remove(idx uint32) (*checked.Handle[T], error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, err := t.entry(idx)
	if err != nil {
		return nil, err
	}
	h := entry.value.Move()
	t.entries[idx] = tableEntry[T]{}
	t.free = append(t.free, idx)
	return h, nil
}

// Drop releases the table's handle at idx and frees the index.
func (t *Table[T]) Drop(idx uint32) error {
	h, err := t.Remove(idx)
	if err != nil {
		return err
	}
	h.Release()
	return nil
}

// Len returns the number of handles in the table.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries) - 1 - len(t.free)
}

// Close releases every handle in the table and empties it.
func (t *Table[T]) Close() {
	t.mu.Lock()
	entries := t.entries
	t.entries = []tableEntry[T]{{set: false}}
	t.free = nil
	t.mu.Unlock()

	for _, entry := range entries {
		if entry.set {
			entry.value.Release()
		}
	}
}

func (t *Table[T]) entry(idx uint32) (tableEntry[T], error) {
	if idx == 0 || idx >= uint32(len(t.entries)) {
		return tableEntry[T]{}, fmt.Errorf("%w: %d", ErrInvalidIndex, idx)
	}
	entry := t.entries[idx]
	if !entry.set {
		return tableEntry[T]{}, fmt.Errorf("%w: %d is not set", ErrInvalidIndex, idx)
	}
	return entry, nil
}
