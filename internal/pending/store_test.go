package pending

import (
	"testing"

	"github.com/hviet/smile-pos/internal/model"
)

func TestRecordAssignsIncreasingSeq(t *testing.T) {
	s := NewStore()
	s.Record(model.PendingChange{Kind: model.ChangeAdd, TableID: 1, DishID: "P01"})
	s.Record(model.PendingChange{Kind: model.ChangeNote, TableID: 1, DishID: "P01", Note: "x"})
	s.Record(model.PendingChange{Kind: model.ChangeAdd, TableID: 2, DishID: "B01"})

	log := s.SnapshotFor(1)
	if len(log) != 2 {
		t.Fatalf("table 1 log length = %d, want 2", len(log))
	}
	if log[0].Seq >= log[1].Seq {
		t.Errorf("seq not increasing: %d then %d", log[0].Seq, log[1].Seq)
	}
	if log[0].At.IsZero() {
		t.Error("timestamp not assigned")
	}
	if got := s.SnapshotFor(2); len(got) != 1 || got[0].Seq <= log[1].Seq {
		t.Errorf("seq must be store-wide, got %+v after %d", got, log[1].Seq)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.Record(model.PendingChange{Kind: model.ChangeAdd, TableID: 1, DishID: "P01"})
	snap := s.SnapshotFor(1)
	s.Record(model.PendingChange{Kind: model.ChangeRemove, TableID: 1, DishID: "P01"})
	if len(snap) != 1 {
		t.Fatalf("snapshot grew after a later Record: %d entries", len(snap))
	}
	if s.CountFor(1) != 2 {
		t.Fatalf("CountFor(1) = %d, want 2", s.CountFor(1))
	}
}

func TestTablesWithPending(t *testing.T) {
	s := NewStore()
	if got := s.TablesWithPending(); len(got) != 0 {
		t.Fatalf("empty store reports pending tables: %v", got)
	}
	s.Record(model.PendingChange{Kind: model.ChangeAdd, TableID: 3, DishID: "P01"})
	s.Record(model.PendingChange{Kind: model.ChangeAdd, TableID: 7, DishID: "B01"})
	got := s.TablesWithPending()
	if len(got) != 2 {
		t.Fatalf("TablesWithPending = %v, want two tables", got)
	}
	s.Clear(3)
	if s.HasPending(3) {
		t.Error("table 3 still pending after Clear")
	}
	if !s.HasPending(7) {
		t.Error("Clear(3) must not touch table 7")
	}
}

func TestDiscardThroughKeepsLaterEntries(t *testing.T) {
	s := NewStore()
	s.Record(model.PendingChange{Kind: model.ChangeAdd, TableID: 1, DishID: "P01"})
	s.Record(model.PendingChange{Kind: model.ChangeUpdate, TableID: 1, DishID: "P01", Quantity: 3})
	s.Record(model.PendingChange{Kind: model.ChangeAdd, TableID: 1, DishID: "B01"})
	snap := s.SnapshotFor(1)
	maxSeq := snap[1].Seq

	// An edit that lands while a flush is in flight has a higher seq
	// than anything in the flush's snapshot.
	s.Record(model.PendingChange{Kind: model.ChangeNote, TableID: 1, DishID: "P01", Note: "less salt"})

	s.DiscardThrough(1, "P01", maxSeq)

	rest := s.SnapshotFor(1)
	if len(rest) != 2 {
		t.Fatalf("kept %d entries, want 2: %+v", len(rest), rest)
	}
	for _, ch := range rest {
		if ch.DishID == "P01" && ch.Kind != model.ChangeNote {
			t.Errorf("dispatched entry survived discard: %+v", ch)
		}
	}
}

func TestDiscardThroughDropsEmptyLog(t *testing.T) {
	s := NewStore()
	s.Record(model.PendingChange{Kind: model.ChangeAdd, TableID: 1, DishID: "P01"})
	seq := s.SnapshotFor(1)[0].Seq
	s.DiscardThrough(1, "P01", seq)
	if s.HasPending(1) {
		t.Error("table 1 still pending after full discard")
	}
}
