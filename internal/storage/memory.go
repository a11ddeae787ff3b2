package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
)

type ratingKey struct {
	session  uuid.UUID
	location int
}

// MemoryStorage keeps everything in process memory. It is the default
// backend; state is lost when the process exits.
type MemoryStorage struct {
	mu        sync.RWMutex
	order     []int
	locations map[int]*catalog.Location
	ratings   map[ratingKey]int
	pingError error
}

// Ensure MemoryStorage implements Storage interface
var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		locations: make(map[int]*catalog.Location),
		ratings:   make(map[ratingKey]int),
	}
}

// SetPingError configures Ping to fail with err (nil to succeed).
func (m *MemoryStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) Seed(ctx context.Context, locs []catalog.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order = make([]int, 0, len(locs))
	m.locations = make(map[int]*catalog.Location, len(locs))
	m.ratings = make(map[ratingKey]int)
	for _, loc := range locs {
		if _, dup := m.locations[loc.ID]; dup {
			return fmt.Errorf("duplicate location id %d", loc.ID)
		}
		c := loc.Clone()
		m.order = append(m.order, loc.ID)
		m.locations[loc.ID] = &c
	}
	return nil
}

func (m *MemoryStorage) ListLocations(ctx context.Context, filter catalog.Filter) ([]catalog.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]catalog.Location, 0, len(m.order))
	for _, id := range m.order {
		loc := m.locations[id]
		if filter.Matches(*loc) {
			out = append(out, loc.Clone())
		}
	}
	return out, nil
}

func (m *MemoryStorage) GetLocation(ctx context.Context, id int) (*catalog.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	loc, ok := m.locations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrLocationNotFound, id)
	}
	c := loc.Clone()
	return &c, nil
}

func (m *MemoryStorage) Rate(ctx context.Context, session uuid.UUID, id int, value int) (*catalog.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loc, ok := m.locations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrLocationNotFound, id)
	}
	key := ratingKey{session: session, location: id}
	if _, rated := m.ratings[key]; rated {
		return nil, ErrAlreadyRated
	}
	if err := loc.Rate(value); err != nil {
		return nil, err
	}
	m.ratings[key] = value

	c := loc.Clone()
	return &c, nil
}

func (m *MemoryStorage) UserRating(ctx context.Context, session uuid.UUID, id int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ratings[ratingKey{session: session, location: id}], nil
}

func (m *MemoryStorage) AddStory(ctx context.Context, id int, story catalog.Story) (*catalog.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loc, ok := m.locations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrLocationNotFound, id)
	}
	loc.AddStory(story)

	c := loc.Clone()
	return &c, nil
}
