// Package intent maps free-form text to animation clips.
//
// Matching is keyword based and runs before any hosted-model fallback. The
// keyword table is an ordered list so that first-match and full-scan results
// are stable regardless of map iteration order.
package intent

import (
	"strings"

	"marionette/internal/catalog"
	"marionette/internal/models"
)

// Keyword pairs a lower-case text pattern with display-name fragments.
type Keyword struct {
	Pattern   string
	Fragments []string
}

// SequenceMarkers switch the matcher into full-scan mode when present.
var SequenceMarkers = []string{"then", "rồi", "sau đó", "tiếp theo", "và", "and"}

// Keywords is scanned in order.
var Keywords = []Keyword{
	{"walk", []string{"Walk"}},
	{"run", []string{"Run"}},
	{"chạy", []string{"Run"}},
	{"jump", []string{"Jump"}},
	{"nhảy", []string{"Jump"}},
	{"sit", []string{"Sitting"}},
	{"ngồi", []string{"Sitting"}},
	{"wave", []string{"Wave"}},
	{"vẫy", []string{"Wave"}},
	{"chào", []string{"Wave"}},
	{"yes", []string{"Yes"}},
	{"no", []string{"No"}},
	{"punch", []string{"Punch"}},
	{"đấm", []string{"Punch"}},
	{"sword", []string{"Sword"}},
	{"chop", []string{"Chop"}},
	{"cook", []string{"Pan"}},
	{"work", []string{"Assembly"}},
	{"idle", []string{"Idle"}},
	{"duck", []string{"Duck"}},
	{"death", []string{"Death"}},
	{"eat", []string{"Eating"}},
}

// Matcher resolves text against a keyword table.
type Matcher struct {
	keywords []Keyword
	markers  []string
}

// NewMatcher returns a matcher over the default tables.
func NewMatcher() *Matcher {
	return &Matcher{keywords: Keywords, markers: SequenceMarkers}
}

// NewMatcherWith returns a matcher over custom tables.
func NewMatcherWith(keywords []Keyword, markers []string) *Matcher {
	return &Matcher{keywords: keywords, markers: markers}
}

// IsSequence reports whether text asks for several clips in a row.
func (m *Matcher) IsSequence(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range m.markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Match returns the clips text refers to. ok is false when no keyword
// resolves to an available clip; that is not an error, the caller is
// expected to fall back to the assistant.
func (m *Matcher) Match(text string, clips []models.ClipName) (matched []models.ClipName, ok bool) {
	lower := strings.ToLower(text)
	sequence := m.IsSequence(text)

	for _, kw := range m.keywords {
		if !strings.Contains(lower, kw.Pattern) {
			continue
		}
		for _, frag := range kw.Fragments {
			clip, found := findByFragment(clips, frag)
			if !found {
				continue
			}
			if !sequence {
				return []models.ClipName{clip}, true
			}
			if !contains(matched, clip) {
				matched = append(matched, clip)
			}
		}
	}
	return matched, len(matched) > 0
}

// Resolve maps proposed animation names onto available clips. A proposal
// matches a clip whose display name equals it ignoring case, or contains it.
// The first clip in catalog order wins; unmatched proposals are dropped.
func Resolve(proposals []string, clips []models.ClipName) []models.ClipName {
	var out []models.ClipName
	for _, p := range proposals {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		for _, clip := range clips {
			name := catalog.DisplayName(clip)
			if strings.EqualFold(name, p) || strings.Contains(name, p) {
				out = append(out, clip)
				break
			}
		}
	}
	return out
}

// ParseSuggestion splits a comma-separated model suggestion into names.
// "none" means no suggestion.
func ParseSuggestion(text string) []string {
	clean := strings.TrimSpace(text)
	clean = strings.NewReplacer(`"`, "", "`", "").Replace(clean)
	clean = strings.TrimSpace(clean)
	if clean == "" || strings.EqualFold(clean, "none") {
		return nil
	}
	var names []string
	for _, part := range strings.Split(clean, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func findByFragment(clips []models.ClipName, frag string) (models.ClipName, bool) {
	for _, clip := range clips {
		if strings.Contains(catalog.DisplayName(clip), frag) {
			return clip, true
		}
	}
	return "", false
}

func contains(clips []models.ClipName, clip models.ClipName) bool {
	for _, c := range clips {
		if c == clip {
			return true
		}
	}
	return false
}
