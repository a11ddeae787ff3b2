package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// Seed is the on-disk catalog format.
type Seed struct {
	Locations []Location `yaml:"locations"`
}

// DefaultSeed returns the catalog bundled with the binary.
func DefaultSeed() ([]Location, error) {
	return DecodeSeed(bytes.NewReader(seedYAML))
}

// MustDefaultSeed is DefaultSeed for callers that treat a broken embedded
// catalog as a programming error.
func MustDefaultSeed() []Location {
	locs, err := DefaultSeed()
	if err != nil {
		panic(err)
	}
	return locs
}

// LoadSeedFile reads and validates a catalog file.
func LoadSeedFile(path string) ([]Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return DecodeSeed(f)
}

// DecodeSeed strictly decodes a catalog (unknown fields are rejected) and
// validates every location.
func DecodeSeed(r io.Reader) ([]Location, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Seed
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := ValidateLocations(s.Locations); err != nil {
		return nil, err
	}
	return s.Locations, nil
}

// ValidationError collects every problem found in a catalog.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid catalog:\n" + strings.Join(e.Problems, "\n")
}

// ValidateLocations checks ids, enums and rating bookkeeping.
func ValidateLocations(locs []Location) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, "  - "+fmt.Sprintf(format, args...))
	}

	if len(locs) == 0 {
		add("no locations defined")
	}

	seen := make(map[int]bool, len(locs))
	for i, loc := range locs {
		where := fmt.Sprintf("location[%d] (id %d)", i, loc.ID)
		if loc.ID <= 0 {
			add("%s: id must be positive", where)
		}
		if seen[loc.ID] {
			add("%s: duplicate id", where)
		}
		seen[loc.ID] = true

		if strings.TrimSpace(loc.Title) == "" {
			add("%s: title is required", where)
		}
		if !loc.Difficulty.Valid() {
			add("%s: unknown difficulty %q", where, loc.Difficulty)
		}
		if !loc.Type.Valid() {
			add("%s: unknown type %q", where, loc.Type)
		}
		if loc.Danger < 0 || loc.Danger > MaxDanger {
			add("%s: danger %d out of range 0-%d", where, loc.Danger, MaxDanger)
		}
		if loc.RatingsCount < 0 {
			add("%s: ratings_count must not be negative", where)
		}
		if loc.RatingsCount == 0 && loc.Rating != 0 {
			add("%s: rating %.1f without any votes", where, loc.Rating)
		}
		if loc.RatingsCount > 0 && (loc.Rating < MinRating || loc.Rating > MaxRating) {
			add("%s: rating %.1f out of range %d-%d", where, loc.Rating, MinRating, MaxRating)
		}

		storyIDs := make(map[int64]bool, len(loc.Stories))
		for j, s := range loc.Stories {
			if storyIDs[s.ID] {
				add("%s: story[%d] duplicate id %d", where, j, s.ID)
			}
			storyIDs[s.ID] = true
			if strings.TrimSpace(s.Author) == "" || strings.TrimSpace(s.Text) == "" {
				add("%s: story[%d] needs author and text", where, j)
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
