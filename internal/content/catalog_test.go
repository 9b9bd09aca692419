package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mixee/internal/domain/activity"
)

const minimalCatalog = `
names: [Ada]
locations: [Here]
phrases: {message: [a], video: [a], post: [a], community: [a], connection: [a], marketplace: [a], learning: [a]}
sections:
  - {id: chat, title: Chat, badge: 2}
`

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, c.Names)
	assert.NotEmpty(t, c.Locations)
	for _, cat := range activity.Categories {
		assert.NotEmpty(t, c.Phrases[cat], "category %s", cat)
	}

	sections := c.NavSections()
	require.Len(t, sections, len(c.Sections))
	assert.Equal(t, "feed", sections[0].ID)
}

func TestLoad_EmptyPathUsesEmbedded(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	d, err := Default()
	require.NoError(t, err)
	assert.Equal(t, d, c)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalCatalog), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada"}, c.Names)
	assert.Equal(t, []activity.Section{{ID: "chat", Title: "Chat"}}, c.NavSections())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no names", `
locations: [Here]
phrases: {message: [a], video: [a], post: [a], community: [a], connection: [a], marketplace: [a], learning: [a]}
`},
		{"missing category", `
names: [Ada]
locations: [Here]
phrases: {message: [a]}
`},
		{"unknown category", `
names: [Ada]
locations: [Here]
phrases: {message: [a], video: [a], post: [a], community: [a], connection: [a], marketplace: [a], learning: [a], gossip: [a]}
`},
		{"duplicate section", `
names: [Ada]
locations: [Here]
phrases: {message: [a], video: [a], post: [a], community: [a], connection: [a], marketplace: [a], learning: [a]}
sections:
  - {id: chat, title: Chat}
  - {id: chat, title: Chat again}
`},
		{"negative badge", `
names: [Ada]
locations: [Here]
phrases: {message: [a], video: [a], post: [a], community: [a], connection: [a], marketplace: [a], learning: [a]}
sections:
  - {id: chat, title: Chat, badge: -1}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(minimalCatalog + "colour: blue\n"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCatalog)
}
