package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// MaxStoryImages caps the photos attached to one story.
	MaxStoryImages = 4

	// JustNow is the date label given to freshly submitted stories.
	JustNow = "just now"
)

var (
	ErrMissingFields    = errors.New("author and story text are required")
	ErrTooManyImages    = fmt.Errorf("at most %d images per story", MaxStoryImages)
	ErrUnsupportedMedia = errors.New("unsupported media type")
)

// Media is a locally loaded file held in memory as a data URL.
type Media struct {
	Name     string `json:"name" yaml:"name"`
	MIMEType string `json:"mime_type" yaml:"mime_type"`
	Size     int64  `json:"size" yaml:"size"`
	DataURL  string `json:"data_url" yaml:"data_url"`
}

func (m Media) IsImage() bool { return strings.HasPrefix(m.MIMEType, "image/") }
func (m Media) IsVideo() bool { return strings.HasPrefix(m.MIMEType, "video/") }

// Story is a user-submitted account attached to a location.
type Story struct {
	ID     int64   `json:"id" yaml:"id"`
	Author string  `json:"author" yaml:"author"`
	Date   string  `json:"date" yaml:"date"`
	Text   string  `json:"text" yaml:"text"`
	Images []Media `json:"images,omitempty" yaml:"images,omitempty"`
	Video  *Media  `json:"video,omitempty" yaml:"video,omitempty"`
}

// Clone copies the media slices so the story stays immutable once shared.
func (s Story) Clone() Story {
	c := s
	if s.Images != nil {
		c.Images = append([]Media(nil), s.Images...)
	}
	if s.Video != nil {
		v := *s.Video
		c.Video = &v
	}
	return c
}

// StoryDraft is the form state of an unsubmitted story.
type StoryDraft struct {
	Author string
	Text   string
	Images []Media
	Video  *Media
}

// Validate checks the draft without modifying it.
func (d StoryDraft) Validate() error {
	if strings.TrimSpace(d.Author) == "" || strings.TrimSpace(d.Text) == "" {
		return ErrMissingFields
	}
	if len(d.Images) > MaxStoryImages {
		return fmt.Errorf("%w: got %d", ErrTooManyImages, len(d.Images))
	}
	for _, img := range d.Images {
		if !img.IsImage() {
			return fmt.Errorf("%w: %s is %s, not an image", ErrUnsupportedMedia, img.Name, img.MIMEType)
		}
	}
	if d.Video != nil && !d.Video.IsVideo() {
		return fmt.Errorf("%w: %s is %s, not a video", ErrUnsupportedMedia, d.Video.Name, d.Video.MIMEType)
	}
	return nil
}

// NewStory validates the draft and turns it into a story stamped at now.
// The millisecond timestamp doubles as the id; Location.AddStory resolves
// two stories landing in the same millisecond.
func NewStory(d StoryDraft, now time.Time) (Story, error) {
	if err := d.Validate(); err != nil {
		return Story{}, err
	}
	s := Story{
		ID:     now.UnixMilli(),
		Author: strings.TrimSpace(d.Author),
		Date:   JustNow,
		Text:   strings.TrimSpace(d.Text),
	}
	if len(d.Images) > 0 {
		s.Images = append([]Media(nil), d.Images...)
	}
	if d.Video != nil {
		v := *d.Video
		s.Video = &v
	}
	return s, nil
}

// AddStory appends s and returns it as stored. An id that is not above every
// existing story id is moved to one past the highest, keeping ids unique
// and increasing within the location.
func (l *Location) AddStory(s Story) Story {
	var top int64
	for _, existing := range l.Stories {
		top = max(top, existing.ID)
	}
	if s.ID <= top {
		s.ID = top + 1
	}
	s = s.Clone()
	l.Stories = append(l.Stories, s)
	return s
}
