package state

import (
	"sync/atomic"
	"time"

	"github.com/statecast/statecast/internal/document"
)

type entry struct {
	doc document.Document
	at  time.Time
}

// Store holds the latest successfully fetched snapshot. The zero of the
// store is empty: Snapshot reports false until the first Replace.
type Store struct {
	cur atomic.Pointer[entry]
	now func() time.Time // injectable for deterministic tests
}

// New returns an empty Store.
func New() *Store {
	return &Store{now: time.Now}
}

// Replace atomically swaps in doc as the current snapshot. The caller must
// not modify doc afterwards.
func (s *Store) Replace(doc document.Document) {
	s.cur.Store(&entry{doc: doc, at: s.now()})
}

// Snapshot returns the current snapshot and whether one exists yet. The
// returned Document is shared — callers must treat it as read-only.
func (s *Store) Snapshot() (document.Document, bool) {
	e := s.cur.Load()
	if e == nil {
		return nil, false
	}
	return e.doc, true
}

// UpdatedAt returns when the current snapshot was stored, and false if no
// snapshot exists yet.
func (s *Store) UpdatedAt() (time.Time, bool) {
	e := s.cur.Load()
	if e == nil {
		return time.Time{}, false
	}
	return e.at, true
}
