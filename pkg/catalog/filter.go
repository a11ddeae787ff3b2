package catalog

// Filter narrows the catalog by difficulty and type. The zero value and
// the "all" values both match everything.
type Filter struct {
	Difficulty Difficulty
	Type       LocationType
}

// Matches reports whether loc passes both predicates.
func (f Filter) Matches(loc Location) bool {
	if f.Difficulty != "" && f.Difficulty != DifficultyAll && loc.Difficulty != f.Difficulty {
		return false
	}
	if f.Type != "" && f.Type != TypeAll && loc.Type != f.Type {
		return false
	}
	return true
}

// Apply returns the matching locations in their original order.
func (f Filter) Apply(locs []Location) []Location {
	out := make([]Location, 0, len(locs))
	for _, loc := range locs {
		if f.Matches(loc) {
			out = append(out, loc)
		}
	}
	return out
}

// NextDifficulty cycles all -> easy -> ... -> extreme -> all.
func NextDifficulty(d Difficulty) Difficulty {
	if d == "" || d == DifficultyAll {
		return Difficulties[0]
	}
	for i, v := range Difficulties {
		if v == d && i+1 < len(Difficulties) {
			return Difficulties[i+1]
		}
	}
	return DifficultyAll
}

// NextLocationType cycles all -> industrial -> ... -> military -> all.
func NextLocationType(t LocationType) LocationType {
	if t == "" || t == TypeAll {
		return LocationTypes[0]
	}
	for i, v := range LocationTypes {
		if v == t && i+1 < len(LocationTypes) {
			return LocationTypes[i+1]
		}
	}
	return TypeAll
}
