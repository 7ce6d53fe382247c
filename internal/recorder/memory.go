package recorder

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"PriceFeed/internal/model"
)

// MemoryRecorder keeps readings in process memory. Used when database.driver is "memory" and in tests.
type MemoryRecorder struct {
	mu       sync.RWMutex
	readings []model.Reading
	nextID   int64
}

func NewMemoryRecorder() *MemoryRecorder { return &MemoryRecorder{nextID: 1} }

func (m *MemoryRecorder) Append(_ context.Context, r model.Reading) (model.Reading, error) {
	if err := validate(r); err != nil {
		return model.Reading{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r.ID = m.nextID
	r.ObservedAt = r.ObservedAt.UTC()
	m.nextID++
	m.readings = append(m.readings, r)
	return r, nil
}

func (m *MemoryRecorder) ReadAll(_ context.Context, order model.Order, rng model.TimeRange) ([]model.Reading, error) {
	m.mu.RLock()
	out := make([]model.Reading, 0, len(m.readings))
	for _, r := range m.readings {
		if rng.Contains(r.ObservedAt) {
			out = append(out, r)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if order == model.Descending {
			a, b = b, a
		}
		if !a.ObservedAt.Equal(b.ObservedAt) {
			return a.ObservedAt.Before(b.ObservedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

// Len returns the number of stored readings.
func (m *MemoryRecorder) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.readings)
}

func (m *MemoryRecorder) Ping(context.Context) error { return nil }
func (m *MemoryRecorder) Close() error               { return nil }
