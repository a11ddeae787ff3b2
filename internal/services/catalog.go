package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/abandoned-sites/internal/storage"
	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
	"github.com/jwebster45206/abandoned-sites/pkg/moderation"
)

// Catalog is what the console and CLI talk to. It binds storage to one
// browsing session and applies story validation and moderation.
type Catalog struct {
	storage   storage.Storage
	session   uuid.UUID
	moderator *moderation.Moderator // nil when stories are not moderated
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Catalog)

// WithModeration cleans story author and text before they are stored.
func WithModeration(m *moderation.Moderator) Option {
	return func(c *Catalog) { c.moderator = m }
}

// WithClock overrides time.Now for story timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

func NewCatalog(s storage.Storage, session uuid.UUID, logger *slog.Logger, opts ...Option) *Catalog {
	c := &Catalog{
		storage: s,
		session: session,
		logger:  logger.With("session_id", session.String()),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session is the identity votes are recorded against.
func (c *Catalog) Session() uuid.UUID {
	return c.session
}

func (c *Catalog) Locations(ctx context.Context, filter catalog.Filter) ([]catalog.Location, error) {
	locs, err := c.storage.ListLocations(ctx, filter)
	if err != nil {
		c.logger.Error("Failed to list locations", "error", err, "difficulty", filter.Difficulty, "type", filter.Type)
		return nil, err
	}
	return locs, nil
}

func (c *Catalog) Location(ctx context.Context, id int) (*catalog.Location, error) {
	return c.storage.GetLocation(ctx, id)
}

// Rate records this session's vote. A repeat vote returns
// storage.ErrAlreadyRated without touching the aggregate.
func (c *Catalog) Rate(ctx context.Context, id int, value int) (*catalog.Location, error) {
	loc, err := c.storage.Rate(ctx, c.session, id, value)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyRated) || errors.Is(err, catalog.ErrInvalidRating) {
			c.logger.Debug("Rating rejected", "location_id", id, "value", value, "reason", err)
		} else {
			c.logger.Error("Failed to rate location", "location_id", id, "error", err)
		}
		return nil, err
	}
	c.logger.Info("Location rated", "location_id", id, "value", value, "rating", loc.Rating, "ratings_count", loc.RatingsCount)
	return loc, nil
}

// UserRating returns the session's earlier vote, 0 if none.
func (c *Catalog) UserRating(ctx context.Context, id int) (int, error) {
	return c.storage.UserRating(ctx, c.session, id)
}

// UserRatings loads the session's votes for the given locations.
func (c *Catalog) UserRatings(ctx context.Context, ids []int) (map[int]int, error) {
	out := make(map[int]int, len(ids))
	for _, id := range ids {
		v, err := c.storage.UserRating(ctx, c.session, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load rating for %d: %w", id, err)
		}
		if v > 0 {
			out[id] = v
		}
	}
	return out, nil
}

// SubmitStory validates the draft and appends it to the location. Invalid
// drafts return catalog.ErrMissingFields (or another validation error)
// and nothing is stored.
func (c *Catalog) SubmitStory(ctx context.Context, id int, draft catalog.StoryDraft) (*catalog.Story, *catalog.Location, error) {
	if c.moderator != nil {
		draft.Author = c.moderator.Clean(draft.Author)
		draft.Text = c.moderator.Clean(draft.Text)
	}

	story, err := catalog.NewStory(draft, c.now())
	if err != nil {
		c.logger.Debug("Story rejected", "location_id", id, "reason", err)
		return nil, nil, err
	}

	loc, err := c.storage.AddStory(ctx, id, story)
	if err != nil {
		c.logger.Error("Failed to add story", "location_id", id, "error", err)
		return nil, nil, err
	}

	// The stored copy may carry a bumped id.
	story = loc.Stories[len(loc.Stories)-1]

	c.logger.Info("Story added", "location_id", id, "story_id", story.ID, "images", len(story.Images), "video", story.Video != nil)
	return &story, loc, nil
}
