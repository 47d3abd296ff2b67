// Package syncer drains the pending-change store and reconciles it
// against the remote order store.  A flush merges a table's intent log
// into one operation per dish, dispatches all dishes concurrently, and
// discards from the store exactly the entries that were confirmed.
// Failures stay pending and are retried by whichever event triggers
// the next flush (table switch, manual save, payment, shutdown).
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/hviet/smile-pos/internal/catalog"
	"github.com/hviet/smile-pos/internal/model"
	"github.com/hviet/smile-pos/internal/pending"
)

// ErrFlushFailed is returned when a flush dispatched operations and
// every single one failed.  Callers with a dependent action (payment)
// abort on this, because nothing at all was persisted.  A partial
// failure is not an error: it is reported through Result so the caller
// can warn and move on.
var ErrFlushFailed = errors.New("flush failed: no changes persisted")

// RemoteOrders is the slice of the remote store the engine needs.  The
// remote side keys rows by dish name, so names (resolved through the
// catalog) travel on the wire, never IDs.
type RemoteOrders interface {
	UpsertOrder(ctx context.Context, tableID int, dishName string, quantity int, note string) error
	DeleteOrder(ctx context.Context, tableID int, dishName string) error
}

// ErrNotFound must be returned (or wrapped) by RemoteOrders.DeleteOrder
// when the row does not exist remotely.  The engine treats that as
// success: removing a dish that was never persisted is a no-op, not a
// failure.
var ErrNotFound = errors.New("not found")

// LineSource exposes live order state to the engine.  Quantity and
// note for an upsert are read from what the cashier currently sees,
// not reconstructed from the intent log; the log alone cannot answer
// "what quantity does a note-only trail imply".
type LineSource interface {
	LineFor(tableID int, dishID string) (quantity int, note string, ok bool)
}

// Result aggregates one flush.
type Result struct {
	OK      bool // every dispatched dish succeeded
	Flushed int  // dishes whose remote operation succeeded
	Failed  int  // dishes whose remote operation failed
}

// Engine coordinates flushes.  At most one flush per table runs at a
// time: a trigger that arrives while a flush for the same table is in
// flight waits for that flush and shares its result instead of racing
// a duplicate.
type Engine struct {
	store   *pending.Store
	remote  RemoteOrders
	catalog *catalog.Catalog
	lines   LineSource

	mu       sync.Mutex
	inFlight map[int]*flight
}

type flight struct {
	done chan struct{}
	res  Result
	err  error
}

// New returns an Engine over the given collaborators.  lines may be
// nil in tests; the engine then falls back to quantities recorded in
// the log.
func New(store *pending.Store, remote RemoteOrders, cat *catalog.Catalog, lines LineSource) *Engine {
	return &Engine{
		store:    store,
		remote:   remote,
		catalog:  cat,
		lines:    lines,
		inFlight: make(map[int]*flight),
	}
}

// Flush drains the table's pending changes and dispatches them.  An
// empty log is an immediate success.  Per-dish outcomes are isolated:
// one dish failing does not roll back or block the others.  Entries of
// successful dishes are discarded from the store; failed dishes keep
// theirs for the next flush.  Flush returns ErrFlushFailed only when
// operations were dispatched and none succeeded.
func (e *Engine) Flush(ctx context.Context, tableID int) (Result, error) {
	e.mu.Lock()
	if f, ok := e.inFlight[tableID]; ok {
		e.mu.Unlock()
		select {
		case <-f.done:
			return f.res, f.err
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	e.inFlight[tableID] = f
	e.mu.Unlock()

	f.res, f.err = e.flush(ctx, tableID)

	e.mu.Lock()
	delete(e.inFlight, tableID)
	e.mu.Unlock()
	close(f.done)
	return f.res, f.err
}

func (e *Engine) flush(ctx context.Context, tableID int) (Result, error) {
	snapshot := e.store.SnapshotFor(tableID)
	effs := pending.Resolve(snapshot)
	if len(effs) == 0 {
		return Result{OK: true}, nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done = make([]bool, len(effs))
	)
	for i, eff := range effs {
		wg.Add(1)
		go func(i int, eff model.EffectiveChange) {
			defer wg.Done()
			err := e.dispatch(ctx, tableID, eff)
			if err != nil {
				log.Printf("syncer: table %d dish %s: %v", tableID, eff.DishID, err)
				return
			}
			mu.Lock()
			done[i] = true
			mu.Unlock()
		}(i, eff)
	}
	wg.Wait()

	var res Result
	for i, eff := range effs {
		if done[i] {
			res.Flushed++
			e.store.DiscardThrough(tableID, eff.DishID, eff.MaxSeq)
		} else {
			res.Failed++
		}
	}
	res.OK = res.Failed == 0
	if res.Flushed == 0 {
		return res, fmt.Errorf("table %d: %w", tableID, ErrFlushFailed)
	}
	return res, nil
}

// dispatch executes one effective change against the remote store.
func (e *Engine) dispatch(ctx context.Context, tableID int, eff model.EffectiveChange) error {
	name := e.catalog.NameFor(eff.DishID)

	if eff.Remove {
		err := e.remote.DeleteOrder(ctx, tableID, name)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	qty, note := e.upsertArgs(tableID, eff)
	return e.remote.UpsertOrder(ctx, tableID, name, qty, note)
}

// upsertArgs picks quantity and note for an upsert.  Live order state
// wins when available; the log values are the fallback, with quantity
// defaulting to 1 for a note-only trail on a line the state no longer
// knows about.
func (e *Engine) upsertArgs(tableID int, eff model.EffectiveChange) (int, string) {
	if e.lines != nil {
		if qty, note, ok := e.lines.LineFor(tableID, eff.DishID); ok {
			return qty, note
		}
	}
	qty := 1
	if eff.HasQuantity {
		qty = eff.Quantity
	}
	return qty, eff.Note
}
