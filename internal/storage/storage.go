package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrAlreadyRated     = errors.New("location already rated in this session")
)

// Storage holds the catalog and the per-session rating side map.
// Implementations return copies; mutating a returned location has no effect.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Seed replaces the catalog contents.
	Seed(ctx context.Context, locs []catalog.Location) error

	ListLocations(ctx context.Context, filter catalog.Filter) ([]catalog.Location, error)
	GetLocation(ctx context.Context, id int) (*catalog.Location, error)

	// Rate folds value into the location's running mean and records it
	// against the session. A second vote from the same session returns
	// ErrAlreadyRated and changes nothing.
	Rate(ctx context.Context, session uuid.UUID, id int, value int) (*catalog.Location, error)
	// UserRating returns the session's vote for a location, or 0.
	UserRating(ctx context.Context, session uuid.UUID, id int) (int, error)

	// AddStory appends the story last in the location's story list.
	AddStory(ctx context.Context, id int, story catalog.Story) (*catalog.Location, error)
}
