package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hviet/smile-pos/internal/catalog"
	"github.com/hviet/smile-pos/internal/model"
)

var (
	phoBo  = model.Dish{ID: "P01", Name: "Phở bò", Price: 55000}
	bunCha = model.Dish{ID: "B01", Name: "Bún chả", Price: 45000}
)

type upsert struct {
	tableID  int
	dishName string
	quantity int
	note     string
}

// fakeStore implements RemoteStore and ReportSink in memory.
type fakeStore struct {
	mu      sync.Mutex
	records []model.OrderRecord
	upserts []upsert
	deletes []string
	reports []model.Report

	upsertErr error
	deleteErr error
	reportErr error
}

func (f *fakeStore) ListOrders(ctx context.Context) ([]model.OrderRecord, error) {
	return f.records, nil
}

func (f *fakeStore) UpsertOrder(ctx context.Context, tableID int, dishName string, quantity int, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, upsert{tableID, dishName, quantity, note})
	return nil
}

func (f *fakeStore) DeleteOrder(ctx context.Context, tableID int, dishName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, dishName)
	return nil
}

func (f *fakeStore) RecordSales(ctx context.Context, rows []model.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reportErr != nil {
		return f.reportErr
	}
	f.reports = append(f.reports, rows...)
	return nil
}

func (f *fakeStore) lastUpserts() []upsert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]upsert(nil), f.upserts...)
}

func newSession(remote *fakeStore) *Session {
	return New(catalog.Default(), remote, remote)
}

func TestTableLayout(t *testing.T) {
	s := newSession(&fakeStore{})
	tables := s.Tables()
	if len(tables) != TableCount {
		t.Fatalf("got %d tables, want %d", len(tables), TableCount)
	}
	if tables[0].Name != "Bàn 1" {
		t.Errorf("table 1 name = %q", tables[0].Name)
	}
	for i, want := range map[int]string{14: "Shopee", 15: "Giao đi", 16: "Mang về"} {
		if tables[i].Name != want {
			t.Errorf("table %d name = %q, want %q", i+1, tables[i].Name, want)
		}
	}
}

func TestAddOrderAccumulatesQuantity(t *testing.T) {
	remote := &fakeStore{}
	s := newSession(remote)
	s.AddOrder(1, phoBo, 2)
	s.AddOrder(1, phoBo, 3)

	tbl, _ := s.Table(1)
	if len(tbl.Orders) != 1 || tbl.Orders[0].Quantity != 5 {
		t.Fatalf("orders = %+v, want one line with quantity 5", tbl.Orders)
	}
	if !tbl.IsOrdered {
		t.Error("IsOrdered false on a table with orders")
	}

	if _, err := s.SaveTable(context.Background(), 1); err != nil {
		t.Fatalf("SaveTable = %v", err)
	}
	got := remote.lastUpserts()
	if len(got) != 1 {
		t.Fatalf("upserts = %+v, want one merged upsert", got)
	}
	if want := (upsert{1, "Phở bò", 5, ""}); got[0] != want {
		t.Errorf("upsert = %+v, want %+v", got[0], want)
	}
	if s.HasPending(1) {
		t.Error("table still pending after save")
	}
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	remote := &fakeStore{}
	s := newSession(remote)
	s.AddOrder(1, phoBo, 2)
	s.UpdateQuantity(1, phoBo.ID, 0)

	tbl, _ := s.Table(1)
	if len(tbl.Orders) != 0 || tbl.IsOrdered {
		t.Fatalf("table after zero-quantity update = %+v, want empty", tbl)
	}

	if _, err := s.SaveTable(context.Background(), 1); err != nil {
		t.Fatalf("SaveTable = %v", err)
	}
	remote.mu.Lock()
	defer remote.mu.Unlock()
	if len(remote.upserts) != 0 {
		t.Errorf("add followed by remove must not upsert: %+v", remote.upserts)
	}
	if len(remote.deletes) != 1 || remote.deletes[0] != "Phở bò" {
		t.Errorf("deletes = %v, want the removed dish", remote.deletes)
	}
}

func TestUpdateNoteFlushesLiveQuantity(t *testing.T) {
	remote := &fakeStore{}
	s := newSession(remote)
	s.AddOrder(1, phoBo, 2)
	if _, err := s.SaveTable(context.Background(), 1); err != nil {
		t.Fatalf("SaveTable = %v", err)
	}

	// A note-only pending log cannot answer what quantity to send; the
	// engine must read the live line instead.
	s.UpdateNote(1, phoBo.ID, "less noodles")
	if _, err := s.SaveTable(context.Background(), 1); err != nil {
		t.Fatalf("SaveTable = %v", err)
	}

	got := remote.lastUpserts()
	if len(got) != 2 {
		t.Fatalf("upserts = %+v, want two", got)
	}
	if want := (upsert{1, "Phở bò", 2, "less noodles"}); got[1] != want {
		t.Errorf("note flush = %+v, want %+v", got[1], want)
	}
}

func TestSwitchingTablesFlushesTheOldOne(t *testing.T) {
	remote := &fakeStore{}
	s := newSession(remote)
	s.SetCurrentTable(1)
	s.AddOrder(1, phoBo, 1)

	s.SetCurrentTable(2)
	s.Shutdown(context.Background()) // waits for the background flush

	if got := remote.lastUpserts(); len(got) != 1 || got[0].tableID != 1 {
		t.Fatalf("upserts after switch = %+v, want table 1 flushed once", got)
	}
	if s.HasPending(1) {
		t.Error("table 1 still pending after switch flush")
	}
}

func TestSwitchToSameTableDoesNotFlush(t *testing.T) {
	remote := &fakeStore{}
	s := newSession(remote)
	s.SetCurrentTable(1)
	s.AddOrder(1, phoBo, 1)
	s.SetCurrentTable(1)

	// Give a wrongly spawned flush time to land before checking.
	time.Sleep(20 * time.Millisecond)
	if got := remote.lastUpserts(); len(got) != 0 {
		t.Errorf("re-selecting the current table flushed it: %+v", got)
	}
}

func TestHydratePopulatesTables(t *testing.T) {
	remote := &fakeStore{records: []model.OrderRecord{
		{TableID: 1, DishName: "Phở bò", Quantity: 2, Note: "no onion"},
		{TableID: 1, DishName: "Món cũ đã bỏ", Quantity: 1},
		{TableID: 3, DishName: "Bún chả", Quantity: 1},
	}}
	s := newSession(remote)
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate = %v", err)
	}

	tbl, _ := s.Table(1)
	if len(tbl.Orders) != 2 || !tbl.IsOrdered {
		t.Fatalf("table 1 = %+v, want two hydrated lines", tbl)
	}
	if tbl.Orders[0].Dish != phoBo || tbl.Orders[0].Note != "no onion" {
		t.Errorf("line 0 = %+v, want catalog-resolved Phở bò", tbl.Orders[0])
	}
	// Unknown names become zero-price placeholders, never dropped rows.
	if tbl.Orders[1].Dish.Price != 0 || tbl.Orders[1].Dish.Name != "Món cũ đã bỏ" {
		t.Errorf("line 1 = %+v, want placeholder dish", tbl.Orders[1])
	}
	if tbl2, _ := s.Table(2); tbl2.IsOrdered {
		t.Error("table 2 should stay empty")
	}
}

func TestCompletePayment(t *testing.T) {
	remote := &fakeStore{}
	s := newSession(remote)
	s.AddOrder(5, phoBo, 2)  // 110000
	s.AddOrder(5, bunCha, 1) // 45000

	bill, err := s.CompletePayment(context.Background(), 5, 10, 15000)
	if err != nil {
		t.Fatalf("CompletePayment = %v", err)
	}
	if bill.Subtotal != 155000 || bill.Discount != 15500 || bill.Total != 154500 {
		t.Errorf("bill = %+v", bill)
	}

	remote.mu.Lock()
	if len(remote.reports) != 2 {
		t.Errorf("reports = %+v, want one row per dish", remote.reports)
	}
	if len(remote.deletes) != 2 {
		t.Errorf("deletes = %v, want both dishes cleared remotely", remote.deletes)
	}
	remote.mu.Unlock()

	tbl, _ := s.Table(5)
	if len(tbl.Orders) != 0 || tbl.IsOrdered {
		t.Errorf("table after payment = %+v, want empty", tbl)
	}
	if s.HasPending(5) {
		t.Error("pending log not cleared after payment")
	}
}

func TestCompletePaymentAbortsWhenNothingPersists(t *testing.T) {
	remote := &fakeStore{upsertErr: errors.New("server down")}
	s := newSession(remote)
	s.AddOrder(5, phoBo, 2)

	if _, err := s.CompletePayment(context.Background(), 5, 0, 0); err == nil {
		t.Fatal("payment must abort when the final flush persists nothing")
	}
	tbl, _ := s.Table(5)
	if len(tbl.Orders) != 1 {
		t.Errorf("aborted payment must leave the table intact: %+v", tbl)
	}
	if !s.HasPending(5) {
		t.Error("aborted payment must keep the pending log")
	}
}

func TestCompletePaymentResetsDespiteDeleteFailures(t *testing.T) {
	remote := &fakeStore{deleteErr: errors.New("server down"), reportErr: errors.New("also down")}
	s := newSession(remote)
	s.AddOrder(5, phoBo, 2)
	if _, err := s.SaveTable(context.Background(), 5); err != nil {
		t.Fatalf("SaveTable = %v", err)
	}

	bill, err := s.CompletePayment(context.Background(), 5, 0, 0)
	if err != nil {
		t.Fatalf("CompletePayment = %v; report and delete failures must not block payment", err)
	}
	if bill.Total != 110000 {
		t.Errorf("bill total = %v", bill.Total)
	}
	tbl, _ := s.Table(5)
	if len(tbl.Orders) != 0 || tbl.IsOrdered {
		t.Errorf("table must reset even when remote cleanup fails: %+v", tbl)
	}
}

func TestCompletePaymentRejectsBadDiscount(t *testing.T) {
	remote := &fakeStore{}
	s := newSession(remote)
	s.AddOrder(5, phoBo, 2)

	if _, err := s.CompletePayment(context.Background(), 5, 500, 0); err == nil {
		t.Fatal("ambiguous discount must abort the payment")
	}
	if got := remote.lastUpserts(); len(got) != 0 {
		t.Errorf("rejected payment must not touch the remote store: %+v", got)
	}
	if !s.HasPending(5) {
		t.Error("rejected payment must keep the pending log")
	}
}

func TestShutdownFlushesEveryPendingTable(t *testing.T) {
	remote := &fakeStore{}
	s := newSession(remote)
	s.AddOrder(1, phoBo, 1)
	s.AddOrder(4, bunCha, 2)

	s.Shutdown(context.Background())

	got := remote.lastUpserts()
	if len(got) != 2 {
		t.Fatalf("upserts = %+v, want both tables flushed", got)
	}
	if s.HasPending(1) || s.HasPending(4) {
		t.Error("tables still pending after shutdown")
	}
}
