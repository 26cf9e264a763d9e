package repositories

import (
	"context"
	"fmt"
	"sync"
	"trip-planner-service/internal/domain"
)

// In-memory implementation of the TripRepository port, used when no
// database is configured. Trips are lost on restart.
type MemoryTripRepository struct {
	mu    sync.RWMutex
	trips map[string]domain.Trip
	order []string
}

func NewMemoryTripRepository() *MemoryTripRepository {
	return &MemoryTripRepository{trips: make(map[string]domain.Trip)}
}

func (m *MemoryTripRepository) CreateTrip(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.trips[trip.ID]; ok {
		return domain.Trip{}, fmt.Errorf("create trip id=%s: already exists", trip.ID)
	}
	m.trips[trip.ID] = trip
	m.order = append(m.order, trip.ID)

	return trip, nil
}

func (m *MemoryTripRepository) GetTrip(ctx context.Context, id string) (domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.trips[id]
	if !ok {
		return domain.Trip{}, fmt.Errorf("get trip id=%s: %w", id, domain.ErrTripNotFound)
	}
	return t, nil
}

// Return all trips, newest first.
func (m *MemoryTripRepository) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Trip, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, m.trips[m.order[i]])
	}
	return out, nil
}

func (m *MemoryTripRepository) DeleteTrip(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.trips[id]; !ok {
		return fmt.Errorf("delete trip id=%s: %w", id, domain.ErrTripNotFound)
	}
	delete(m.trips, id)

	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
