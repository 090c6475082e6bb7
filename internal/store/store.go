// Package store holds the in-memory ordered sequence of transactions that is
// the single source of truth for a session.
//
// Insertion order is display order. Positions shift on every insert or
// delete, so callers address records by their stable ID; the positional
// accessors exist for callers that just read a rendered index.
package store

import (
	"errors"
	"fmt"

	"budget/internal/core"
)

var (
	ErrNotFound        = errors.New("transaction not found")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Store is an ordered collection of transactions. It is not safe for
// concurrent use; the controller serializes access.
type Store struct {
	items []core.Transaction
}

// New returns a store seeded with a copy of ts.
func New(ts []core.Transaction) *Store {
	s := &Store{}
	s.Replace(ts)
	return s
}

// Replace swaps the whole sequence, used when loading persisted state.
func (s *Store) Replace(ts []core.Transaction) {
	s.items = append([]core.Transaction(nil), ts...)
}

// Len returns the number of transactions.
func (s *Store) Len() int { return len(s.items) }

// All returns a copy of the sequence in display order.
func (s *Store) All() []core.Transaction {
	return append([]core.Transaction(nil), s.items...)
}

// Add appends t to the end of the sequence.
func (s *Store) Add(t core.Transaction) {
	s.items = append(s.items, t)
}

// At returns the transaction at position i.
func (s *Store) At(i int) (core.Transaction, error) {
	if i < 0 || i >= len(s.items) {
		return core.Transaction{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(s.items))
	}
	return s.items[i], nil
}

// RemoveAt deletes the transaction at position i, shifting later ones down.
func (s *Store) RemoveAt(i int) (core.Transaction, error) {
	t, err := s.At(i)
	if err != nil {
		return core.Transaction{}, err
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return t, nil
}

// Insert puts t at position i, used to undo a failed removal.
func (s *Store) Insert(i int, t core.Transaction) error {
	if i < 0 || i > len(s.items) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(s.items))
	}
	s.items = append(s.items, core.Transaction{})
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = t
	return nil
}

// IndexOf returns the current position of id, or -1.
func (s *Store) IndexOf(id string) int {
	for i, t := range s.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the transaction with the given id.
func (s *Store) Get(id string) (core.Transaction, error) {
	i := s.IndexOf(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.items[i], nil
}

// Update replaces the fields of the transaction with the given id in place,
// keeping its position and id. It returns the previous value.
func (s *Store) Update(id string, t core.Transaction) (core.Transaction, error) {
	i := s.IndexOf(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	prev := s.items[i]
	t.ID = id
	s.items[i] = t
	return prev, nil
}

// Remove deletes the transaction with the given id and returns it together
// with the position it occupied.
func (s *Store) Remove(id string) (core.Transaction, int, error) {
	i := s.IndexOf(id)
	if i < 0 {
		return core.Transaction{}, -1, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t, _ := s.RemoveAt(i)
	return t, i, nil
}
