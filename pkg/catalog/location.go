package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Difficulty is how hard a site is to get into and move around in.
type Difficulty string

const (
	DifficultyAll     Difficulty = "all"
	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyHard    Difficulty = "hard"
	DifficultyExtreme Difficulty = "extreme"
)

// Difficulties lists the concrete difficulty levels in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExtreme}

var difficultyLabels = map[Difficulty]string{
	DifficultyAll:     "All",
	DifficultyEasy:    "Easy",
	DifficultyMedium:  "Medium",
	DifficultyHard:    "Hard",
	DifficultyExtreme: "Extreme",
}

// Label returns the display label for the difficulty.
func (d Difficulty) Label() string {
	if l, ok := difficultyLabels[d]; ok {
		return l
	}
	return string(d)
}

// Valid reports whether d is a concrete difficulty level.
func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if v == d {
			return true
		}
	}
	return false
}

// ParseDifficulty accepts a difficulty key or "all" (case-insensitive).
// An empty string is treated as "all".
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if d == "" || d == DifficultyAll {
		return DifficultyAll, nil
	}
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// LocationType is the kind of site.
type LocationType string

const (
	TypeAll         LocationType = "all"
	TypeIndustrial  LocationType = "industrial"
	TypeHospital    LocationType = "hospital"
	TypeAmusement   LocationType = "amusement"
	TypeResidential LocationType = "residential"
	TypeMilitary    LocationType = "military"
)

// LocationTypes lists the concrete location types in display order.
var LocationTypes = []LocationType{TypeIndustrial, TypeHospital, TypeAmusement, TypeResidential, TypeMilitary}

// Label returns the title-cased display label for the type.
func (t LocationType) Label() string {
	return cases.Title(language.English).String(string(t))
}

// Valid reports whether t is a concrete location type.
func (t LocationType) Valid() bool {
	for _, v := range LocationTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ParseLocationType accepts a type key or "all" (case-insensitive).
// An empty string is treated as "all".
func ParseLocationType(s string) (LocationType, error) {
	t := LocationType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" || t == TypeAll {
		return TypeAll, nil
	}
	if !t.Valid() {
		return "", fmt.Errorf("unknown location type %q", s)
	}
	return t, nil
}

// DangerLevel buckets a 0-10 danger score for display.
type DangerLevel int

const (
	DangerLow DangerLevel = iota
	DangerModerate
	DangerHigh
	DangerCritical
)

// DangerLevelOf maps a danger score onto its display band.
func DangerLevelOf(danger int) DangerLevel {
	switch {
	case danger <= 3:
		return DangerLow
	case danger <= 6:
		return DangerModerate
	case danger <= 8:
		return DangerHigh
	default:
		return DangerCritical
	}
}

// MaxDanger is the top of the danger scale.
const MaxDanger = 10

// Location is one catalogued abandoned site.
type Location struct {
	ID           int          `json:"id" yaml:"id"`
	Title        string       `json:"title" yaml:"title"`
	Image        string       `json:"image" yaml:"image"`
	Description  string       `json:"description" yaml:"description"`
	History      string       `json:"history" yaml:"history"`
	Difficulty   Difficulty   `json:"difficulty" yaml:"difficulty"`
	Danger       int          `json:"danger" yaml:"danger"`
	Type         LocationType `json:"type" yaml:"type"`
	Year         string       `json:"year" yaml:"year"`
	Rating       float64      `json:"rating" yaml:"rating"`
	RatingsCount int          `json:"ratings_count" yaml:"ratings_count"`
	Stories      []Story      `json:"stories,omitempty" yaml:"stories,omitempty"`
	Videos       []string     `json:"videos,omitempty" yaml:"videos,omitempty"`
}

// Clone returns a deep copy so callers can't mutate shared catalog state.
func (l Location) Clone() Location {
	c := l
	if l.Stories != nil {
		c.Stories = make([]Story, len(l.Stories))
		for i, s := range l.Stories {
			c.Stories[i] = s.Clone()
		}
	}
	if l.Videos != nil {
		c.Videos = append([]string(nil), l.Videos...)
	}
	return c
}

// Summary is a plain-text rendering used for clipboard export and the CLI.
func (l Location) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", l.Title, l.Year)
	fmt.Fprintf(&b, "Type: %s | Difficulty: %s | Danger: %d/%d\n", l.Type.Label(), l.Difficulty.Label(), l.Danger, MaxDanger)
	fmt.Fprintf(&b, "Rating: %.1f (%d votes)\n", l.Rating, l.RatingsCount)
	b.WriteString(l.Description)
	if l.Image != "" {
		b.WriteString("\n" + l.Image)
	}
	return b.String()
}
