package storage

import (
	"sort"
	"sync"

	"complexity-engine/internal/types"
)

// MemoryStorage implements Storage entirely in process memory, guarded by a
// single RWMutex. All Get-style methods return copies so that callers can
// freely mutate the result without corrupting engine state — the same deep
// copy discipline the teacher's MemoryStorage applies to its maps.
type MemoryStorage struct {
	mu sync.RWMutex

	events  map[string]*types.Event
	factors map[string][]*types.Factor // event ID -> factors from that event
	order   []string                   // event IDs in insertion order, for stable LoadAllFactors ordering

	suppressed map[types.FactorCode]struct{}
	pending    *types.PendingFollowUp
	controls   map[string]string
}

// NewMemoryStorage returns an empty, ready-to-use MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		events:     make(map[string]*types.Event),
		factors:    make(map[string][]*types.Factor),
		suppressed: make(map[types.FactorCode]struct{}),
		controls:   make(map[string]string),
	}
}

func copyEvent(e *types.Event) *types.Event {
	cp := *e
	if e.ParentEventID != nil {
		cp.ParentEventID = types.Ptr(*e.ParentEventID)
	}
	if e.RawText != nil {
		cp.RawText = types.Ptr(*e.RawText)
	}
	return &cp
}

func copyFactor(f *types.Factor) *types.Factor {
	cp := *f
	return &cp
}

func copyPending(p *types.PendingFollowUp) *types.PendingFollowUp {
	if p == nil {
		return nil
	}
	cp := *p
	if p.MissingInfoKey != nil {
		cp.MissingInfoKey = types.Ptr(*p.MissingInfoKey)
	}
	return &cp
}

func (m *MemoryStorage) SaveEventAndFactors(event *types.Event, factors []*types.Factor) error {
	if event.SaveMode == types.SaveModeTransient {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := copyEvent(event)
	m.events[event.ID] = stored

	storedFactors := make([]*types.Factor, len(factors))
	for i, f := range factors {
		storedFactors[i] = copyFactor(f)
	}
	m.factors[event.ID] = storedFactors
	m.order = append(m.order, event.ID)
	return nil
}

func (m *MemoryStorage) LoadAllFactors() ([]*types.Factor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*types.Factor
	for _, eventID := range m.order {
		for _, f := range m.factors[eventID] {
			out = append(out, copyFactor(f))
		}
	}
	return out, nil
}

func (m *MemoryStorage) Suppress(code types.FactorCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppressed[code] = struct{}{}
	return nil
}

func (m *MemoryStorage) Unsuppress(code types.FactorCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.suppressed, code)
	return nil
}

func (m *MemoryStorage) SuppressedSet() (map[types.FactorCode]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[types.FactorCode]struct{}, len(m.suppressed))
	for code := range m.suppressed {
		out[code] = struct{}{}
	}
	return out, nil
}

func (m *MemoryStorage) SetPending(pending *types.PendingFollowUp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = copyPending(pending)
	return nil
}

func (m *MemoryStorage) GetPending() (*types.PendingFollowUp, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyPending(m.pending), nil
}

func (m *MemoryStorage) ClearPending() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
	return nil
}

func (m *MemoryStorage) GetControl(key, defaultValue string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.controls[key]; ok {
		return v, nil
	}
	return defaultValue, nil
}

func (m *MemoryStorage) SetControl(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.controls[key] = value
	return nil
}

// sortFactorsByRecency orders factors newest-first, keeping the relative
// order of factors with equal timestamps. No code in the repository calls it.
func sortFactorsByRecency(factors []*types.Factor) {
	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].CreatedAt.After(factors[j].CreatedAt)
	})
}
