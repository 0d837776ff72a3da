package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClueStatusValid(t *testing.T) {
	tests := []struct {
		status ClueStatus
		want   bool
	}{
		{ClueStatusUnresolved, true},
		{ClueStatusResolved, true},
		{"open", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Valid())
		})
	}
}

func TestNewUnresolvedClue(t *testing.T) {
	c := NewUnresolvedClue(1, 9, "a locked box")

	assert.Equal(t, ClueStatusUnresolved, c.Status)
	if assert.NotNil(t, c.IntroducedChapterID) {
		assert.Equal(t, int64(9), *c.IntroducedChapterID)
	}
	assert.Nil(t, c.ResolvedChapterID)
}

func TestChapterText(t *testing.T) {
	c := NewChapter(1, 0, "Prologue")
	assert.False(t, c.HasContent())
	assert.Equal(t, "", c.Text())

	body := "It was a dark night."
	c.Content = &body
	assert.True(t, c.HasContent())
	assert.Equal(t, body, c.Text())
}

func TestClueResolutionConsistent(t *testing.T) {
	chapter := int64(3)
	tests := []struct {
		name string
		clue Clue
		want bool
	}{
		{"unresolved without chapter", Clue{Status: ClueStatusUnresolved}, true},
		{"resolved with chapter", Clue{Status: ClueStatusResolved, ResolvedChapterID: &chapter}, true},
		{"unresolved with chapter", Clue{Status: ClueStatusUnresolved, ResolvedChapterID: &chapter}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.clue.ResolutionConsistent())
		})
	}
}
