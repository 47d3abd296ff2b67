package model

import "time"

// ChangeKind classifies a pending change by the user action that
// produced it.
type ChangeKind string

const (
	// ChangeAdd records that a dish was added; Line carries the
	// resulting absolute quantity, not the increment.
	ChangeAdd ChangeKind = "add"
	// ChangeUpdate records that a dish's quantity was set to an
	// absolute value.
	ChangeUpdate ChangeKind = "update"
	// ChangeRemove records that a dish was removed from the order.
	ChangeRemove ChangeKind = "remove"
	// ChangeNote records that a dish's note text was edited.
	ChangeNote ChangeKind = "note"
)

// PendingChange is one recorded, not-yet-persisted user intent against
// a single dish on a single table.  Changes accumulate in an ordered
// log per table and are merged down to one effective operation per
// dish when the table is flushed to the remote store.
//
// Fields:
//  Kind     - the user action class.
//  TableID  - table the intent belongs to.
//  DishID   - dish the intent targets.
//  Quantity - absolute quantity for update intents.
//  Note     - note text for note intents.
//  Line     - snapshot of the order line for add intents.
//  Seq      - store-assigned sequence number; defines last-write-wins
//             order.  Strictly increasing per store.
//  At       - wall-clock instant the intent was recorded.
type PendingChange struct {
	Kind     ChangeKind
	TableID  int
	DishID   string
	Quantity int
	Note     string
	Line     *OrderLine
	Seq      uint64
	At       time.Time
}

// EffectiveChange is the single resolved operation a dish's merged
// pending history reduces to: either a removal or an upsert carrying
// the latest known quantity and note.  MaxSeq is the highest sequence
// number that contributed to the resolution, so the store can discard
// exactly the merged entries after a successful dispatch and keep
// anything recorded later.
type EffectiveChange struct {
	DishID      string
	Remove      bool
	Quantity    int
	HasQuantity bool
	Note        string
	HasNote     bool
	MaxSeq      uint64
}
