package sequence

import (
	"errors"
	"fmt"
)

var (
	//ErrInvalidSequence is returned by Add for empty or non-alphabet input.
	ErrInvalidSequence = errors.New("invalid sequence")
	//ErrNotFound is returned by Get for an unknown sequence id.
	ErrNotFound = errors.New("sequence not found")
)

// Store holds all sequences for one run. Sequences are immutable once added
// and are never removed; a new run starts a new Store. Storage is append-only
// so ids index directly into the backing slice.
type Store struct {
	seqs  []*Sequence
	bases int64
}

func NewStore() *Store {
	return &Store{seqs: make([]*Sequence, 0, 1000)}
}

// Add validates and stores a sequence, returning its id. Ids are dense
// integers in insertion order. The byte slice is copied so later mutation by
// the caller cannot reach the store.
func (st *Store) Add(name string, data []byte) (int, error) {
	if len(data) == 0 {
		return -1, fmt.Errorf("%w: %q is empty", ErrInvalidSequence, name)
	}
	for i, b := range data {
		if !ValidByte(b) {
			return -1, fmt.Errorf("%w: %q has non-alphabet byte %q at position %d", ErrInvalidSequence, name, b, i)
		}
	}
	owned := make([]byte, len(data))
	copy(owned, data)
	id := len(st.seqs)
	st.seqs = append(st.seqs, &Sequence{id: id, name: name, data: owned})
	st.bases += int64(len(owned))
	return id, nil
}

func (st *Store) Get(id int) (*Sequence, error) {
	if id < 0 || id >= len(st.seqs) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return st.seqs[id], nil
}

// IDs returns all sequence ids in insertion order.
func (st *Store) IDs() []int {
	ids := make([]int, len(st.seqs))
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func (st *Store) Len() int {
	return len(st.seqs)
}

// Bases is the total base count across all stored sequences.
func (st *Store) Bases() int64 {
	return st.bases
}
