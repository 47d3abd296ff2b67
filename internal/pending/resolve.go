package pending

import (
	"sort"

	"github.com/hviet/smile-pos/internal/model"
)

// Resolve folds a table's raw intent log down to one effective
// operation per dish.  It is a pure function over the snapshot; the
// store is not consulted.
//
// Resolution per dish, in sequence order:
//
//   - A remove wins unconditionally over everything recorded before
//     it.  A strictly later add, update or note supersedes the remove:
//     the cashier deleted the dish and then re-added it, so the dish
//     must be upserted, not deleted.
//   - Quantity comes from the latest add or update entry after the
//     winning remove boundary.  A note-only trail leaves the quantity
//     unknown (HasQuantity false); the syncer fills it in from live
//     order state rather than guessing from the log.
//   - Note comes from the latest entry that carries note information,
//     either a note intent or the line snapshot of an add.
//
// The returned changes are ordered by dish ID so callers and tests see
// a deterministic sequence.  MaxSeq on each change is the highest
// sequence number merged into it.
func Resolve(log []model.PendingChange) []model.EffectiveChange {
	if len(log) == 0 {
		return nil
	}

	byDish := make(map[string][]model.PendingChange)
	order := make([]string, 0, 4)
	for _, ch := range log {
		if _, seen := byDish[ch.DishID]; !seen {
			order = append(order, ch.DishID)
		}
		byDish[ch.DishID] = append(byDish[ch.DishID], ch)
	}
	sort.Strings(order)

	out := make([]model.EffectiveChange, 0, len(order))
	for _, dishID := range order {
		out = append(out, resolveDish(dishID, byDish[dishID]))
	}
	return out
}

func resolveDish(dishID string, chs []model.PendingChange) model.EffectiveChange {
	eff := model.EffectiveChange{DishID: dishID}

	var removeSeq uint64
	removed := false
	for _, ch := range chs {
		if ch.Seq > eff.MaxSeq {
			eff.MaxSeq = ch.Seq
		}
		if ch.Kind == model.ChangeRemove {
			removed = true
			removeSeq = ch.Seq
		}
	}

	// Collect quantity and note from entries after the last remove.
	// If nothing survives the remove boundary, the remove stands.
	survived := false
	for _, ch := range chs {
		if ch.Kind == model.ChangeRemove || ch.Seq < removeSeq {
			continue
		}
		survived = true
		switch ch.Kind {
		case model.ChangeAdd:
			if ch.Line != nil {
				eff.Quantity = ch.Line.Quantity
				eff.HasQuantity = true
				eff.Note = ch.Line.Note
				eff.HasNote = true
			}
		case model.ChangeUpdate:
			eff.Quantity = ch.Quantity
			eff.HasQuantity = true
		case model.ChangeNote:
			eff.Note = ch.Note
			eff.HasNote = true
		}
	}

	eff.Remove = removed && !survived
	return eff
}
