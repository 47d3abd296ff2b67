// Package session owns the cashier-facing state of the POS: the
// tables with their current order lines, the notion of which table is
// selected, and the lifecycle hooks that guarantee pending edits are
// flushed on table switch, manual save, payment and shutdown.
//
// Every mutating action is synchronous and optimistic: it updates the
// in-memory table immediately and records an intent in the pending
// store, regardless of network health.  What the cashier sees is
// always at least as current as the remote store; the pending store is
// exactly the delta between the two.
package session

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/hviet/smile-pos/internal/billing"
	"github.com/hviet/smile-pos/internal/catalog"
	"github.com/hviet/smile-pos/internal/model"
	"github.com/hviet/smile-pos/internal/pending"
	"github.com/hviet/smile-pos/internal/syncer"
)

// TableCount is the fixed number of billing units: fourteen floor
// tables plus the three sales channels.
const TableCount = 17

// RemoteStore is the full remote interface the session needs: the
// engine's order operations plus the startup snapshot.
type RemoteStore interface {
	syncer.RemoteOrders
	ListOrders(ctx context.Context) ([]model.OrderRecord, error)
}

// ReportSink records settled sales.  Payment writes one row per dish.
type ReportSink interface {
	RecordSales(ctx context.Context, rows []model.Report) error
}

// Session is the single per-process owner of table state, the pending
// store and the sync engine.  Construct one at startup and pass it by
// reference; there is no ambient global state.
type Session struct {
	mu      sync.Mutex
	tables  map[int]*model.Table
	order   []int // table IDs in display order
	current int   // 0 means no current table

	store   *pending.Store
	engine  *syncer.Engine
	remote  RemoteStore
	reports ReportSink
	catalog *catalog.Catalog

	flushes sync.WaitGroup // background flushes spawned by table switches
}

// New builds a Session with the fixed table layout.  The session
// creates its own pending store and sync engine so that the engine can
// read live quantities back from the session at flush time.
func New(cat *catalog.Catalog, remote RemoteStore, reports ReportSink) *Session {
	s := &Session{
		tables:  make(map[int]*model.Table, TableCount),
		order:   make([]int, 0, TableCount),
		store:   pending.NewStore(),
		remote:  remote,
		reports: reports,
		catalog: cat,
	}
	for id := 1; id <= TableCount; id++ {
		s.tables[id] = &model.Table{ID: id, Name: tableName(id)}
		s.order = append(s.order, id)
	}
	s.engine = syncer.New(s.store, remote, cat, s)
	return s
}

// tableName labels the billing units.  The last three are the
// delivery channels the restaurant sells through.
func tableName(id int) string {
	switch id {
	case 15:
		return "Shopee"
	case 16:
		return "Giao đi"
	case 17:
		return "Mang về"
	default:
		return "Bàn " + strconv.Itoa(id)
	}
}

// Hydrate loads the remote snapshot and repopulates every table's
// order list.  It is called once at startup, before any user action.
// Rows whose dish name is not in the catalog become zero-price
// placeholder dishes so the table still shows them.
func (s *Session) Hydrate(ctx context.Context) error {
	records, err := s.remote.ListOrders(ctx)
	if err != nil {
		return err
	}

	byTable := make(map[int][]model.OrderLine)
	for _, rec := range records {
		dish, ok := s.catalog.ByName(rec.DishName)
		if !ok {
			dish = catalog.Placeholder(rec.DishName)
		}
		byTable[rec.TableID] = append(byTable[rec.TableID], model.OrderLine{
			Dish:     dish,
			Quantity: rec.Quantity,
			Note:     rec.Note,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tables {
		t.Orders = byTable[id]
		t.IsOrdered = len(t.Orders) > 0
	}
	return nil
}

// Tables returns a copy of all tables in display order.
func (s *Session) Tables() []model.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Table, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.snapshotTable(id))
	}
	return out
}

// Table returns a copy of one table.
func (s *Session) Table(id int) (model.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[id]; !ok {
		return model.Table{}, false
	}
	return s.snapshotTable(id), true
}

func (s *Session) snapshotTable(id int) model.Table {
	t := s.tables[id]
	cp := *t
	cp.Orders = append([]model.OrderLine(nil), t.Orders...)
	return cp
}

// AddOrder adds qty of a dish to a table.  If the dish is already on
// the table its quantity grows by qty; otherwise a new line is
// appended.  The recorded intent carries the resulting absolute
// quantity, because the remote upsert sets quantity, it does not
// increment it.
func (s *Session) AddOrder(tableID int, dish model.Dish, qty int) {
	if qty < 1 {
		qty = 1
	}
	s.mu.Lock()
	t, ok := s.tables[tableID]
	if !ok {
		s.mu.Unlock()
		log.Printf("session: add on unknown table %d", tableID)
		return
	}
	var line model.OrderLine
	if i := findLine(t.Orders, dish.ID); i >= 0 {
		t.Orders[i].Quantity += qty
		line = t.Orders[i]
	} else {
		line = model.OrderLine{Dish: dish, Quantity: qty}
		t.Orders = append(t.Orders, line)
	}
	t.IsOrdered = true
	s.mu.Unlock()

	snapshot := line
	s.store.Record(model.PendingChange{
		Kind:    model.ChangeAdd,
		TableID: tableID,
		DishID:  dish.ID,
		Line:    &snapshot,
	})
}

// UpdateQuantity sets a line's quantity to an absolute value.  A
// quantity of zero or less removes the line, exactly like RemoveItem.
func (s *Session) UpdateQuantity(tableID int, dishID string, qty int) {
	if qty <= 0 {
		s.RemoveItem(tableID, dishID)
		return
	}
	s.mu.Lock()
	t, ok := s.tables[tableID]
	if !ok {
		s.mu.Unlock()
		log.Printf("session: update on unknown table %d", tableID)
		return
	}
	if i := findLine(t.Orders, dishID); i >= 0 {
		t.Orders[i].Quantity = qty
	}
	s.mu.Unlock()

	s.store.Record(model.PendingChange{
		Kind:     model.ChangeUpdate,
		TableID:  tableID,
		DishID:   dishID,
		Quantity: qty,
	})
}

// RemoveItem deletes a line from the table and records a remove
// intent.  The remove supersedes earlier pending edits for the dish
// unless a later edit arrives before the next flush.
func (s *Session) RemoveItem(tableID int, dishID string) {
	s.mu.Lock()
	t, ok := s.tables[tableID]
	if !ok {
		s.mu.Unlock()
		log.Printf("session: remove on unknown table %d", tableID)
		return
	}
	if i := findLine(t.Orders, dishID); i >= 0 {
		t.Orders = append(t.Orders[:i], t.Orders[i+1:]...)
	}
	t.IsOrdered = len(t.Orders) > 0
	s.mu.Unlock()

	s.store.Record(model.PendingChange{
		Kind:    model.ChangeRemove,
		TableID: tableID,
		DishID:  dishID,
	})
}

// UpdateNote edits a line's note in place and records a note intent.
func (s *Session) UpdateNote(tableID int, dishID, note string) {
	s.mu.Lock()
	t, ok := s.tables[tableID]
	if !ok {
		s.mu.Unlock()
		log.Printf("session: note on unknown table %d", tableID)
		return
	}
	if i := findLine(t.Orders, dishID); i >= 0 {
		t.Orders[i].Note = note
	}
	s.mu.Unlock()

	s.store.Record(model.PendingChange{
		Kind:    model.ChangeNote,
		TableID: tableID,
		DishID:  dishID,
		Note:    note,
	})
}

// LineFor reports the live quantity and note of a dish on a table.
// The sync engine reads upsert arguments through here so a flush
// always sends what the cashier currently sees.
func (s *Session) LineFor(tableID int, dishID string) (int, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableID]
	if !ok {
		return 0, "", false
	}
	if i := findLine(t.Orders, dishID); i >= 0 {
		return t.Orders[i].Quantity, t.Orders[i].Note, true
	}
	return 0, "", false
}

// PendingCount reports the outstanding intent count for a table.
func (s *Session) PendingCount(tableID int) int { return s.store.CountFor(tableID) }

// HasPending reports whether a table has unsaved edits.
func (s *Session) HasPending(tableID int) bool { return s.store.HasPending(tableID) }

// CurrentTable returns the selected table ID, if any.
func (s *Session) CurrentTable() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != 0
}

// SetCurrentTable selects a table.  Switching away from a table with
// pending edits triggers an asynchronous flush of the old table; the
// switch itself never blocks, and the pending store keeps anything the
// flush fails to persist.  The engine coalesces duplicate flushes, so
// switching away and back quickly cannot race two flushes for the same
// table.
func (s *Session) SetCurrentTable(tableID int) {
	s.mu.Lock()
	old := s.current
	s.current = tableID
	s.mu.Unlock()

	if old == 0 || old == tableID {
		return
	}
	s.flushes.Add(1)
	go func() {
		defer s.flushes.Done()
		if _, err := s.engine.Flush(context.Background(), old); err != nil {
			log.Printf("session: flush on switch from table %d: %v", old, err)
		}
	}()
}

// SaveCurrent flushes the selected table on demand.  With no table
// selected it is a no-op success.
func (s *Session) SaveCurrent(ctx context.Context) (syncer.Result, error) {
	id, ok := s.CurrentTable()
	if !ok {
		return syncer.Result{OK: true}, nil
	}
	return s.engine.Flush(ctx, id)
}

// SaveTable flushes one table on demand.
func (s *Session) SaveTable(ctx context.Context, tableID int) (syncer.Result, error) {
	return s.engine.Flush(ctx, tableID)
}

// CompletePayment settles a table's bill.  The sequence is:
//
//  1. Compute the bill; an invalid discount aborts before any remote
//     work.
//  2. Flush the table so the remote store reflects the final order.
//     A totally failed flush aborts the payment, because billing
//     against state that never persisted would lose the order.
//  3. Record one report row per dish (best effort; a reporting outage
//     must not block settling the bill).
//  4. Delete every dish of the table from the remote store, all
//     concurrently, each failure isolated to a warning.
//  5. Reset the table locally and drop its pending log.  This step is
//     unconditional: a paid table must never keep looking occupied
//     because a remote delete failed.
func (s *Session) CompletePayment(ctx context.Context, tableID int, discount, shipFee float64) (billing.Bill, error) {
	t, ok := s.Table(tableID)
	if !ok {
		return billing.Bill{}, fmt.Errorf("unknown table %d", tableID)
	}

	bill, err := billing.Compute(tableID, t.Orders, discount, shipFee, time.Now())
	if err != nil {
		return billing.Bill{}, err
	}

	if _, err := s.engine.Flush(ctx, tableID); err != nil {
		return billing.Bill{}, err
	}

	if rows := billing.ReportRows(bill); len(rows) > 0 {
		if err := s.reports.RecordSales(ctx, rows); err != nil {
			log.Printf("session: record sales for table %d: %v", tableID, err)
		}
	}

	var wg sync.WaitGroup
	for _, line := range bill.Items {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if err := s.remote.DeleteOrder(ctx, tableID, name); err != nil {
				log.Printf("session: delete %q on table %d: %v", name, tableID, err)
			}
		}(line.Dish.Name)
	}
	wg.Wait()

	s.mu.Lock()
	if t := s.tables[tableID]; t != nil {
		t.Orders = nil
		t.IsOrdered = false
	}
	s.mu.Unlock()
	s.store.Clear(tableID)

	return bill, nil
}

// Shutdown flushes every table that still has pending edits and waits
// for flushes spawned by earlier table switches.  Best effort: the
// transport may refuse on a hard teardown, and failures only log.
func (s *Session) Shutdown(ctx context.Context) {
	var wg sync.WaitGroup
	for _, id := range s.store.TablesWithPending() {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := s.engine.Flush(ctx, id); err != nil {
				log.Printf("session: shutdown flush of table %d: %v", id, err)
			}
		}(id)
	}
	wg.Wait()
	s.flushes.Wait()
}

func findLine(orders []model.OrderLine, dishID string) int {
	for i := range orders {
		if orders[i].Dish.ID == dishID {
			return i
		}
	}
	return -1
}
