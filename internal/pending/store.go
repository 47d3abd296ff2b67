// Package pending implements the client side's pending-change store:
// the in-memory delta between what the cashier sees on screen and what
// the remote order store holds.  Every mutating user action appends an
// intent here; the syncer drains the log per table and merges it down
// to one operation per dish before talking to the network.
//
// The store is an append-only log per table rather than a latest-only
// map.  Keeping the raw intents makes last-write-wins an explicit fold
// over an ordered list (testable without any network), and lets a
// flush discard exactly the entries it actually dispatched: an intent
// recorded while a flush is in flight keeps a higher sequence number
// than the flush's snapshot and survives the discard.
package pending

import (
	"sync"
	"time"

	"github.com/hviet/smile-pos/internal/model"
)

// Store records user intents per table until they are confirmed as
// persisted.  All methods are safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	seq  uint64
	logs map[int][]model.PendingChange
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{logs: make(map[int][]model.PendingChange)}
}

// Record appends a change to its table's log.  It assigns the
// store-wide sequence number and a timestamp, never blocks on IO and
// never fails; local mutation must always succeed.
func (s *Store) Record(ch model.PendingChange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	ch.Seq = s.seq
	if ch.At.IsZero() {
		ch.At = time.Now()
	}
	s.logs[ch.TableID] = append(s.logs[ch.TableID], ch)
}

// SnapshotFor returns a copy of the table's current log in record
// order.  The caller owns the copy; later Record calls do not affect
// it.
func (s *Store) SnapshotFor(tableID int) []model.PendingChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.logs[tableID]
	if len(log) == 0 {
		return nil
	}
	return append([]model.PendingChange(nil), log...)
}

// CountFor reports how many raw intents are outstanding for a table.
// The UI shows this as the unsaved-changes badge.
func (s *Store) CountFor(tableID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs[tableID])
}

// HasPending reports whether any intent is outstanding for a table.
func (s *Store) HasPending(tableID int) bool {
	return s.CountFor(tableID) > 0
}

// TablesWithPending lists every table that has at least one
// outstanding intent.  Shutdown flushes exactly these.
func (s *Store) TablesWithPending() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.logs))
	for id, log := range s.logs {
		if len(log) > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// DiscardThrough removes the dish's entries with sequence numbers up
// to and including maxSeq.  The syncer calls this per dish after the
// dish's remote operation succeeded, passing the MaxSeq of the
// effective change it dispatched.  Entries recorded after the flush
// snapshot carry higher sequence numbers and are kept, so a concurrent
// edit is never lost to the clear.
func (s *Store) DiscardThrough(tableID int, dishID string, maxSeq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.logs[tableID]
	kept := log[:0]
	for _, ch := range log {
		if ch.DishID == dishID && ch.Seq <= maxSeq {
			continue
		}
		kept = append(kept, ch)
	}
	if len(kept) == 0 {
		delete(s.logs, tableID)
		return
	}
	s.logs[tableID] = kept
}

// Clear drops every outstanding intent for a table.
func (s *Store) Clear(tableID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, tableID)
}
