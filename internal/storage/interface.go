// Package storage provides the pluggable persistence contract for the
// complexity reasoning engine, plus two adapters: an in-memory map (used in
// tests and for ephemeral sessions) and a SQLite-backed store (used for
// durable deployments). Both satisfy the same Storage interface so the
// engine can be tested against either without change.
package storage

import "complexity-engine/internal/types"

// EventFactorRepository owns the append-only event and factor history.
type EventFactorRepository interface {
	// SaveEventAndFactors writes event and all of factors atomically: both
	// become visible to subsequent reads, or neither does. Per save_mode
	// semantics, a transient event is never written (this is a no-op, not
	// an error).
	SaveEventAndFactors(event *types.Event, factors []*types.Factor) error

	// LoadAllFactors returns every persisted factor, across all events.
	LoadAllFactors() ([]*types.Factor, error)
}

// SuppressionRepository manages the user-controlled factor-code blocklist.
type SuppressionRepository interface {
	Suppress(code types.FactorCode) error
	Unsuppress(code types.FactorCode) error
	SuppressedSet() (map[types.FactorCode]struct{}, error)
}

// PendingFollowUpRepository manages the single-row pending-question slot.
// SetPending always replaces any existing row; at most one ever exists.
type PendingFollowUpRepository interface {
	SetPending(pending *types.PendingFollowUp) error
	GetPending() (*types.PendingFollowUp, error)
	ClearPending() error
}

// ControlsRepository is a small typed string KV for persistent user
// controls such as use_saved_context.
type ControlsRepository interface {
	GetControl(key, defaultValue string) (string, error)
	SetControl(key, value string) error
}

// Storage combines every repository the engine depends on. Components
// should depend on this interface, not on a concrete adapter.
type Storage interface {
	EventFactorRepository
	SuppressionRepository
	PendingFollowUpRepository
	ControlsRepository
}

var (
	_ Storage = (*MemoryStorage)(nil)
	_ Storage = (*SQLiteStorage)(nil)
)
