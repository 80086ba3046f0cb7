package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
	"github.com/shenikar/wildfire_broadcasting_system/internal/service"
)

// memoryEntry хранит неизменяемый снимок записи.
// Писатели одной записи сериализуются через mu, читатели только загружают указатель.
type memoryEntry struct {
	mu      sync.Mutex
	current atomic.Pointer[models.Incident]
}

// MemoryIncidentRepository - хранилище инцидентов в памяти процесса
type MemoryIncidentRepository struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	ids     []string // отсортированы, для GetNth
	clock   clockwork.Clock
}

func NewMemoryIncidentRepository(clock clockwork.Clock) service.IncidentRepository {
	return newMemoryIncidentRepository(clock)
}

func newMemoryIncidentRepository(clock clockwork.Clock) *MemoryIncidentRepository {
	return &MemoryIncidentRepository{
		entries: make(map[string]*memoryEntry),
		clock:   clock,
	}
}

func (r *MemoryIncidentRepository) Create(_ context.Context, incident *models.Incident) error {
	snapshot := incident.Clone()
	if snapshot.UpdatedAt.IsZero() {
		snapshot.UpdatedAt = r.clock.Now().UTC()
		incident.UpdatedAt = snapshot.UpdatedAt
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[snapshot.ID]; exists {
		return fmt.Errorf("%w: incident %s already exists", models.ErrValidation, snapshot.ID)
	}
	e := &memoryEntry{}
	e.current.Store(snapshot)
	r.entries[snapshot.ID] = e

	pos, _ := slices.BinarySearch(r.ids, snapshot.ID)
	r.ids = slices.Insert(r.ids, pos, snapshot.ID)
	return nil
}

func (r *MemoryIncidentRepository) lookup(id string) *memoryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[id]
}

func (r *MemoryIncidentRepository) GetByID(_ context.Context, id string) (*models.Incident, error) {
	e := r.lookup(id)
	if e == nil {
		return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrNotFound)
	}
	return e.current.Load().Clone(), nil
}

func (r *MemoryIncidentRepository) List(_ context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	r.mu.RLock()
	matched := make([]*models.Incident, 0, len(r.entries))
	for _, e := range r.entries {
		if snapshot := e.current.Load(); filter.Matches(snapshot) {
			matched = append(matched, snapshot)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *models.Incident) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	out := make([]*models.Incident, len(matched))
	for i, snapshot := range matched {
		out[i] = snapshot.Clone()
	}
	return out, nil
}

func (r *MemoryIncidentRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries), nil
}

func (r *MemoryIncidentRepository) GetNth(_ context.Context, n int) (*models.Incident, error) {
	r.mu.RLock()
	if n < 0 || n >= len(r.ids) {
		r.mu.RUnlock()
		return nil, fmt.Errorf("incident #%d: %w", n, models.ErrNotFound)
	}
	e := r.entries[r.ids[n]]
	r.mu.RUnlock()
	return e.current.Load().Clone(), nil
}

func (r *MemoryIncidentRepository) Update(_ context.Context, id string, patch models.IncidentPatch) (before, after *models.Incident, err error) {
	e := r.lookup(id)
	if e == nil {
		return nil, nil, fmt.Errorf("incident with id %s: %w", id, models.ErrNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Запись могла быть удалена через Clear, пока ждали блокировку
	if r.lookup(id) != e {
		return nil, nil, fmt.Errorf("incident with id %s: %w", id, models.ErrNotFound)
	}

	current := e.current.Load()
	next, err := models.Merge(current, patch, r.clock.Now().UTC())
	if err != nil {
		return nil, nil, err
	}
	e.current.Store(next)
	return current.Clone(), next.Clone(), nil
}

func (r *MemoryIncidentRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*memoryEntry)
	r.ids = nil
	return nil
}
