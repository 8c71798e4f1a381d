package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marionette/internal/models"
)

var clips = []models.ClipName{
	"CharacterArmature|Idle",
	"CharacterArmature|Walk",
	"CharacterArmature|Run",
	"CharacterArmature|Jump",
	"CharacterArmature|Wave",
	"CharacterArmature|Sitting_Start",
	"CharacterArmature|Sitting_Idle",
	"CharacterArmature|Punch",
}

func TestMatch_Sequence(t *testing.T) {
	m := NewMatcher()
	got, ok := m.Match("walk then jump", []models.ClipName{"Walk", "Jump", "Idle"})
	assert.True(t, ok)
	assert.Equal(t, []models.ClipName{"Walk", "Jump"}, got)
}

func TestMatch_SequenceUsesTableOrder(t *testing.T) {
	m := NewMatcher()
	// Text order is jump first, table order puts walk first.
	got, ok := m.Match("Jump and then walk", clips)
	assert.True(t, ok)
	assert.Equal(t, []models.ClipName{"CharacterArmature|Walk", "CharacterArmature|Jump"}, got)
}

func TestMatch_SequenceDeduplicates(t *testing.T) {
	m := NewMatcher()
	// "wave" and "chào" both resolve to the same clip.
	got, ok := m.Match("chào và wave", clips)
	assert.True(t, ok)
	assert.Equal(t, []models.ClipName{"CharacterArmature|Wave"}, got)
}

func TestMatch_Single(t *testing.T) {
	m := NewMatcher()
	got, ok := m.Match("please wave hello", []models.ClipName{"Walk", "Wave", "Idle"})
	assert.True(t, ok)
	assert.Equal(t, []models.ClipName{"Wave"}, got)
}

func TestMatch_SingleFirstHitOnly(t *testing.T) {
	m := NewMatcher()
	got, ok := m.Match("RUN, jump", clips)
	assert.True(t, ok)
	assert.Equal(t, []models.ClipName{"CharacterArmature|Run"}, got)
}

func TestMatch_SkipsKeywordsWithoutClip(t *testing.T) {
	m := NewMatcher()
	// "walk" has no clip here; the scan continues to "wave".
	got, ok := m.Match("walk over and wave", []models.ClipName{"Rig|Wave"})
	assert.True(t, ok)
	assert.Equal(t, []models.ClipName{"Rig|Wave"}, got)
}

func TestMatch_Vietnamese(t *testing.T) {
	m := NewMatcher()
	got, ok := m.Match("chạy rồi nhảy", clips)
	assert.True(t, ok)
	assert.Equal(t, []models.ClipName{"CharacterArmature|Run", "CharacterArmature|Jump"}, got)
}

func TestMatch_NoLocalMatch(t *testing.T) {
	m := NewMatcher()
	got, ok := m.Match("dance", clips)
	assert.False(t, ok)
	assert.Empty(t, got)

	got, ok = m.Match("walk then jump", nil)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestMatch_CustomTable(t *testing.T) {
	m := NewMatcherWith([]Keyword{{"hop", []string{"Jump"}}}, []string{"+"})
	got, ok := m.Match("hop", clips)
	assert.True(t, ok)
	assert.Equal(t, []models.ClipName{"CharacterArmature|Jump"}, got)
	assert.True(t, m.IsSequence("hop + hop"))
	assert.False(t, m.IsSequence("hop then hop"))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		proposals []string
		want      []models.ClipName
	}{
		{"exact ignoring case", []string{"wave"}, []models.ClipName{"CharacterArmature|Wave"}},
		{"substring", []string{"Sitting"}, []models.ClipName{"CharacterArmature|Sitting_Start"}},
		{"keeps order", []string{"Run", "Idle"}, []models.ClipName{"CharacterArmature|Run", "CharacterArmature|Idle"}},
		{"drops unknown", []string{"Dance", "Jump"}, []models.ClipName{"CharacterArmature|Jump"}},
		{"drops blank", []string{"  ", ""}, nil},
		{"duplicates kept", []string{"Wave", "Wave"}, []models.ClipName{"CharacterArmature|Wave", "CharacterArmature|Wave"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.proposals, clips))
		})
	}
}

func TestParseSuggestion(t *testing.T) {
	assert.Equal(t, []string{"Run", "Jump"}, ParseSuggestion(" `Run, Jump` \n"))
	assert.Equal(t, []string{"Wave"}, ParseSuggestion(`"Wave"`))
	assert.Nil(t, ParseSuggestion("None"))
	assert.Nil(t, ParseSuggestion(""))
	assert.Equal(t, []string{"Wave"}, ParseSuggestion("Wave,,"))
}
