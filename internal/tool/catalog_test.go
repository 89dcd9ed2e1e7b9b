package tool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)

	assert.Len(t, c.Categories, 8)
	assert.Equal(t, "Emotional expressions", c.Categories[0].Name)
	assert.Contains(t, c.Actions(), "aiConvertsToPlayerReligion")
	assert.Len(t, c.Examples, 3)
	assert.Equal(t, 10, c.Examples[1].Params["amount"])
}

func TestLoadCatalog_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.yaml")
	content := `
categories:
  - name: Gestures
    actions: [wave, bow]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"wave", "bow"}, c.Actions())
	assert.Empty(t, c.Examples)
}

func TestLoadCatalog_Errors(t *testing.T) {
	_, err := LoadCatalog("/nonexistent/actions.yaml")
	assert.Error(t, err)

	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("categories: [unterminated"), 0o644))
	_, err = LoadCatalog(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("categories: []\n"), 0o644))
	_, err = LoadCatalog(empty)
	assert.Error(t, err)

	noName := filepath.Join(dir, "noname.yaml")
	require.NoError(t, os.WriteFile(noName, []byte("categories:\n  - actions: [a]\n"), 0o644))
	_, err = LoadCatalog(noName)
	assert.Error(t, err)
}

func TestCatalog_Has(t *testing.T) {
	c := DefaultCatalog()
	assert.True(t, c.Has("improveOpinionOfPlayer"))
	assert.True(t, c.Has("emotionHappy"))
	assert.False(t, c.Has("launchMissiles"))
	assert.True(t, NewVOTCAction(c).Knows("becomeLovers"))
}
