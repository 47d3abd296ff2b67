package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hviet/smile-pos/internal/catalog"
	"github.com/hviet/smile-pos/internal/model"
	"github.com/hviet/smile-pos/internal/pending"
)

type call struct {
	op       string // "upsert" or "delete"
	tableID  int
	dishName string
	quantity int
	note     string
}

// fakeRemote records every call and fails the dishes listed in failing.
type fakeRemote struct {
	mu      sync.Mutex
	calls   []call
	failing map[string]error

	entered chan struct{} // closed once on first call, if non-nil
	release chan struct{} // blocks calls until closed, if non-nil
}

func (f *fakeRemote) gate() {
	f.mu.Lock()
	entered := f.entered
	f.entered = nil
	f.mu.Unlock()
	if entered != nil {
		close(entered)
	}
	if f.release != nil {
		<-f.release
	}
}

func (f *fakeRemote) UpsertOrder(ctx context.Context, tableID int, dishName string, quantity int, note string) error {
	f.gate()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{"upsert", tableID, dishName, quantity, note})
	return f.failing[dishName]
}

func (f *fakeRemote) DeleteOrder(ctx context.Context, tableID int, dishName string) error {
	f.gate()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "delete", tableID: tableID, dishName: dishName})
	return f.failing[dishName]
}

func (f *fakeRemote) callsFor(op string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

// Dish IDs double as names: the test catalog is empty and NameFor
// falls back to the ID.
func newEngine(remote *fakeRemote) (*Engine, *pending.Store) {
	store := pending.NewStore()
	return New(store, remote, catalog.New(nil), nil), store
}

func TestFlushEmptyLogIsSuccess(t *testing.T) {
	e, _ := newEngine(&fakeRemote{})
	res, err := e.Flush(context.Background(), 1)
	if err != nil {
		t.Fatalf("Flush = %v", err)
	}
	if !res.OK || res.Flushed != 0 || res.Failed != 0 {
		t.Errorf("Flush result = %+v, want clean no-op", res)
	}
}

func TestFlushUpsertsAndDiscards(t *testing.T) {
	remote := &fakeRemote{}
	e, store := newEngine(remote)
	store.Record(model.PendingChange{
		Kind: model.ChangeAdd, TableID: 1, DishID: "P01",
		Line: &model.OrderLine{Dish: model.Dish{ID: "P01"}, Quantity: 2, Note: "no onion"},
	})

	res, err := e.Flush(context.Background(), 1)
	if err != nil {
		t.Fatalf("Flush = %v", err)
	}
	if !res.OK || res.Flushed != 1 {
		t.Errorf("Flush result = %+v", res)
	}
	got := remote.callsFor("upsert")
	if len(got) != 1 {
		t.Fatalf("upsert calls = %+v, want one", got)
	}
	if want := (call{"upsert", 1, "P01", 2, "no onion"}); got[0] != want {
		t.Errorf("upsert = %+v, want %+v", got[0], want)
	}
	if store.HasPending(1) {
		t.Error("entries not discarded after successful flush")
	}
}

func TestFlushPartialFailureKeepsOnlyFailedDish(t *testing.T) {
	remote := &fakeRemote{failing: map[string]error{"B01": errors.New("boom")}}
	e, store := newEngine(remote)
	store.Record(model.PendingChange{
		Kind: model.ChangeAdd, TableID: 1, DishID: "P01",
		Line: &model.OrderLine{Dish: model.Dish{ID: "P01"}, Quantity: 1},
	})
	store.Record(model.PendingChange{
		Kind: model.ChangeAdd, TableID: 1, DishID: "B01",
		Line: &model.OrderLine{Dish: model.Dish{ID: "B01"}, Quantity: 1},
	})

	res, err := e.Flush(context.Background(), 1)
	if err != nil {
		t.Fatalf("partial failure must not be an error, got %v", err)
	}
	if res.OK || res.Flushed != 1 || res.Failed != 1 {
		t.Errorf("Flush result = %+v, want 1 flushed 1 failed", res)
	}
	rest := store.SnapshotFor(1)
	if len(rest) != 1 || rest[0].DishID != "B01" {
		t.Errorf("pending after flush = %+v, want only B01", rest)
	}
}

func TestFlushTotalFailure(t *testing.T) {
	remote := &fakeRemote{failing: map[string]error{"P01": errors.New("down")}}
	e, store := newEngine(remote)
	store.Record(model.PendingChange{
		Kind: model.ChangeAdd, TableID: 1, DishID: "P01",
		Line: &model.OrderLine{Dish: model.Dish{ID: "P01"}, Quantity: 1},
	})

	res, err := e.Flush(context.Background(), 1)
	if !errors.Is(err, ErrFlushFailed) {
		t.Fatalf("Flush error = %v, want ErrFlushFailed", err)
	}
	if res.Flushed != 0 || res.Failed != 1 {
		t.Errorf("Flush result = %+v", res)
	}
	if !store.HasPending(1) {
		t.Error("failed entries must stay pending")
	}
}

func TestDeleteOfMissingRowIsSuccess(t *testing.T) {
	remote := &fakeRemote{failing: map[string]error{
		"P01": fmt.Errorf("DELETE /v1/orders: %w", ErrNotFound),
	}}
	e, store := newEngine(remote)
	store.Record(model.PendingChange{Kind: model.ChangeRemove, TableID: 1, DishID: "P01"})

	res, err := e.Flush(context.Background(), 1)
	if err != nil {
		t.Fatalf("Flush = %v", err)
	}
	if !res.OK || res.Flushed != 1 {
		t.Errorf("Flush result = %+v, want success", res)
	}
	if store.HasPending(1) {
		t.Error("remove of a missing row must still discard the entries")
	}
}

func TestFlushKeepsEditsRecordedDuringFlush(t *testing.T) {
	remote := &fakeRemote{entered: make(chan struct{}), release: make(chan struct{})}
	e, store := newEngine(remote)
	store.Record(model.PendingChange{
		Kind: model.ChangeAdd, TableID: 1, DishID: "P01",
		Line: &model.OrderLine{Dish: model.Dish{ID: "P01"}, Quantity: 1},
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := e.Flush(context.Background(), 1); err != nil {
			t.Errorf("Flush = %v", err)
		}
	}()

	<-remote.entered
	// The flush has snapshotted and is on the wire; this edit must
	// survive the discard.
	store.Record(model.PendingChange{Kind: model.ChangeUpdate, TableID: 1, DishID: "P01", Quantity: 4})
	close(remote.release)
	<-done

	rest := store.SnapshotFor(1)
	if len(rest) != 1 || rest[0].Kind != model.ChangeUpdate {
		t.Errorf("pending after flush = %+v, want the mid-flight update", rest)
	}
}

func TestConcurrentFlushesCoalesce(t *testing.T) {
	remote := &fakeRemote{entered: make(chan struct{}), release: make(chan struct{})}
	e, store := newEngine(remote)
	store.Record(model.PendingChange{
		Kind: model.ChangeAdd, TableID: 1, DishID: "P01",
		Line: &model.OrderLine{Dish: model.Dish{ID: "P01"}, Quantity: 1},
	})

	first := make(chan Result, 1)
	go func() {
		res, _ := e.Flush(context.Background(), 1)
		first <- res
	}()
	<-remote.entered
	go func() {
		time.Sleep(50 * time.Millisecond)
		close(remote.release)
	}()

	// This call arrives while the first flush is blocked on the wire,
	// so it must wait for that flush instead of dispatching again.
	second, err := e.Flush(context.Background(), 1)
	if err != nil {
		t.Fatalf("second Flush = %v", err)
	}
	if !second.OK {
		t.Errorf("second Flush result = %+v", second)
	}
	if res := <-first; !res.OK || res.Flushed != 1 {
		t.Errorf("first Flush result = %+v", res)
	}
	if got := remote.callsFor("upsert"); len(got) != 1 {
		t.Errorf("remote saw %d upserts, want 1", len(got))
	}
}

func TestWaitingFlushHonorsContext(t *testing.T) {
	remote := &fakeRemote{entered: make(chan struct{}), release: make(chan struct{})}
	e, store := newEngine(remote)
	store.Record(model.PendingChange{
		Kind: model.ChangeAdd, TableID: 1, DishID: "P01",
		Line: &model.OrderLine{Dish: model.Dish{ID: "P01"}, Quantity: 1},
	})

	go e.Flush(context.Background(), 1)
	<-remote.entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Flush(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("waiting Flush error = %v, want context.Canceled", err)
	}
	close(remote.release)
}
