// Package catalog derives display names and categories from provider clip names.
package catalog

import (
	"strings"

	"marionette/internal/models"
)

// VisibleLimit is how many clips the browser lists before showing a "+N more" hint.
const VisibleLimit = 15

// Categories maps each non-empty category to its clips in input order.
type Categories map[models.Category][]models.ClipName

type rule struct {
	category models.Category
	keywords []string
}

// Checked in order; the first rule with a matching keyword wins.
// No rule targets CategoryEmotions, so that tab only appears if one is added.
var rules = []rule{
	{models.CategoryBasic, []string{"Idle", "Wave", "Yes", "No"}},
	{models.CategoryMovement, []string{"Walk", "Run", "Jump", "Duck"}},
	{models.CategoryCombat, []string{"Punch", "Sword", "HitReact", "Death"}},
	{models.CategoryWork, []string{"Assembly", "Chop", "Pan"}},
	{models.CategorySitting, []string{"Sitting"}},
}

// DisplayName strips the provider namespace (everything up to the last '|').
func DisplayName(clip models.ClipName) string {
	s := string(clip)
	if i := strings.LastIndex(s, "|"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// CategoryOf returns the category a clip falls into.
func CategoryOf(clip models.ClipName) models.Category {
	name := DisplayName(clip)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(name, kw) {
				return r.category
			}
		}
	}
	return models.CategoryBasic
}

// Categorize partitions clips by category. Empty categories are absent.
func Categorize(clips []models.ClipName) Categories {
	out := make(Categories)
	for _, clip := range clips {
		cat := CategoryOf(clip)
		out[cat] = append(out[cat], clip)
	}
	return out
}

// Active lists the populated categories in display order.
func (c Categories) Active() []models.Category {
	var cats []models.Category
	for _, cat := range models.CategoryOrder {
		if len(c[cat]) > 0 {
			cats = append(cats, cat)
		}
	}
	return cats
}

// Contains reports whether clip belongs to cat.
func (c Categories) Contains(cat models.Category, clip models.ClipName) bool {
	for _, member := range c[cat] {
		if member == clip {
			return true
		}
	}
	return false
}

// Filter returns the clips whose display name contains search (case-insensitive)
// and which belong to category. CategoryAll or an empty category matches everything.
func Filter(clips []models.ClipName, cats Categories, search string, category models.Category) []models.ClipName {
	needle := strings.ToLower(strings.TrimSpace(search))
	var out []models.ClipName
	for _, clip := range clips {
		if needle != "" && !strings.Contains(strings.ToLower(DisplayName(clip)), needle) {
			continue
		}
		if category != "" && category != models.CategoryAll && !cats.Contains(category, clip) {
			continue
		}
		out = append(out, clip)
	}
	return out
}

// FindIdle returns the first clip whose display name mentions "idle".
func FindIdle(clips []models.ClipName) (models.ClipName, bool) {
	for _, clip := range clips {
		if strings.Contains(strings.ToLower(DisplayName(clip)), "idle") {
			return clip, true
		}
	}
	return "", false
}

// Names joins display names for prompt templates.
func Names(clips []models.ClipName) string {
	names := make([]string, len(clips))
	for i, clip := range clips {
		names[i] = DisplayName(clip)
	}
	return strings.Join(names, ", ")
}
