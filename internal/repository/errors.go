// Package repository defines the persistence layer of the order-store
// server, plus the sentinel errors shared across repositories.  The
// sentinels let handlers distinguish failure scenarios: a missing
// order row maps to HTTP 404, everything else to 500.
package repository

import "errors"

// ErrOrderNotFound is returned when no order row matches the given
// table and dish.  Handlers translate this into HTTP 404; the POS
// client in turn treats a 404 on delete as an already-done removal.
var ErrOrderNotFound = errors.New("order not found")

// ErrReportNotFound is returned when a report row does not exist.
var ErrReportNotFound = errors.New("report not found")
