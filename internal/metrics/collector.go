// Package metrics provides turn-level instrumentation for the complexity
// reasoning engine: counters for risk bands, next-action kinds, router
// categories, pending follow-up activity, and TTL expiry, grounded on the
// teacher's Collector pattern (a mutex-guarded append-only log plus running
// counts) but narrowed to the counters this engine actually emits.
package metrics

import (
	"sync"
	"time"

	"complexity-engine/internal/types"
)

// TurnRecord is one processSmartInput invocation's outcome, as recorded for
// instrumentation.
type TurnRecord struct {
	Timestamp       time.Time
	RiskBand        types.RiskBand
	NextActionKind  types.NextActionKind
	RouterCategory  types.NextStepCategory
	PendingSet      bool
	PendingConsumed bool
	ExpiredFactors  int
}

// Collector accumulates TurnRecords and running counts. Safe for
// concurrent use, though the engine's single-writer model means
// contention is not expected in practice.
type Collector struct {
	mu sync.RWMutex

	turns               []TurnRecord
	riskCounts          map[types.RiskBand]int
	actionCounts        map[types.NextActionKind]int
	routerCounts        map[types.NextStepCategory]int
	pendingSetCount     int
	pendingConsumed     int
	totalExpiredFactors int
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		riskCounts:   make(map[types.RiskBand]int),
		actionCounts: make(map[types.NextActionKind]int),
		routerCounts: make(map[types.NextStepCategory]int),
	}
}

// RecordTurn appends a TurnRecord and updates running counts.
func (c *Collector) RecordTurn(rec TurnRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = append(c.turns, rec)
	c.riskCounts[rec.RiskBand]++
	c.actionCounts[rec.NextActionKind]++
	c.routerCounts[rec.RouterCategory]++
	if rec.PendingSet {
		c.pendingSetCount++
	}
	if rec.PendingConsumed {
		c.pendingConsumed++
	}
	c.totalExpiredFactors += rec.ExpiredFactors
}

// Snapshot is a read-only copy of the collector's running counts.
type Snapshot struct {
	TotalTurns          int
	RiskCounts          map[types.RiskBand]int
	ActionCounts        map[types.NextActionKind]int
	RouterCounts        map[types.NextStepCategory]int
	PendingSetCount     int
	PendingConsumedCount int
	TotalExpiredFactors int
}

// Snapshot returns a copy of the current counts, safe to read without
// holding the collector's lock.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		TotalTurns:           len(c.turns),
		RiskCounts:           make(map[types.RiskBand]int, len(c.riskCounts)),
		ActionCounts:         make(map[types.NextActionKind]int, len(c.actionCounts)),
		RouterCounts:         make(map[types.NextStepCategory]int, len(c.routerCounts)),
		PendingSetCount:      c.pendingSetCount,
		PendingConsumedCount: c.pendingConsumed,
		TotalExpiredFactors:  c.totalExpiredFactors,
	}
	for k, v := range c.riskCounts {
		snap.RiskCounts[k] = v
	}
	for k, v := range c.actionCounts {
		snap.ActionCounts[k] = v
	}
	for k, v := range c.routerCounts {
		snap.RouterCounts[k] = v
	}
	return snap
}
