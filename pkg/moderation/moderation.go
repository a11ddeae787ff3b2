// Package moderation cleans user-submitted story text for audiences that
// need it.
package moderation

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps each filtered word to what is shown instead.
var replacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"ass":          "butt",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"cock":         "[censored]",
	"dick":         "jerk",
	"pussy":        "[censored]",
	"tits":         "[censored]",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"motherfucker": "mother-trucker",
	"goddamn":      "gosh-dang",
	"asshole":      "jerk",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"bullshit":     "baloney",
	"horseshit":    "nonsense",
	"dipshit":      "dummy",
	"shithead":     "jerk",
	"dickhead":     "jerk",
	"prick":        "jerk",
	"douchebag":    "jerk",
	"douche":       "jerk",
}

// Moderator replaces profanity while keeping the writer's capitalisation.
type Moderator struct {
	pattern *regexp.Regexp
}

// New compiles the word list into a single case-insensitive pattern.
func New() *Moderator {
	words := make([]string, 0, len(replacements))
	for w := range replacements {
		words = append(words, regexp.QuoteMeta(w))
	}
	// Longest first so "asshole" wins over "ass".
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})

	return &Moderator{
		pattern: regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)(s?)\b`),
	}
}

// Clean returns text with every listed word (and its plural) replaced.
func (m *Moderator) Clean(text string) string {
	return m.pattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := m.pattern.FindStringSubmatch(match)
		word, suffix := sub[1], sub[2]
		return m.matchCase(word, replacements[strings.ToLower(word)]) + suffix
	})
}

// Contains reports whether text has anything Clean would replace.
func (m *Moderator) Contains(text string) bool {
	return m.pattern.MatchString(text)
}

func (m *Moderator) matchCase(original, replacement string) string {
	// Casers carry state, so each call gets its own.
	title := cases.Title(language.English)
	switch {
	case original == "":
		return replacement
	case strings.ToUpper(original) == original:
		return strings.ToUpper(replacement)
	case strings.ToLower(original) == original:
		return replacement
	case title.String(strings.ToLower(original)) == original:
		return title.String(replacement)
	}

	orig := []rune(original)
	out := []rune(replacement)
	for i, r := range out {
		if i < len(orig) && unicode.IsUpper(orig[i]) {
			out[i] = unicode.ToUpper(r)
		} else {
			out[i] = unicode.ToLower(r)
		}
	}
	return string(out)
}

// Restrictive reports whether a content rating calls for moderation.
func Restrictive(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}
