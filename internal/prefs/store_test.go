package prefs

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestStoreDefaults
func TestStoreDefaults(t *testing.T) {
	s, err := Open(t.TempDir(), "widgets")
	require.NoError(t, err)

	assert.False(t, s.GetBool("portfolio_pinned", false))
	assert.True(t, s.GetBool("missing", true))
	assert.Equal(t, "fallback", s.GetString("widget_order", "fallback"))
	assert.Empty(t, s.GetStringSet("pinned_symbols"))
}

// go test -v --run TestStorePersists
func TestStorePersists(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, "widgets")
	require.NoError(t, err)

	require.NoError(t, s.SetBool("news_pinned", true))
	require.NoError(t, s.SetString("widget_order", "news,portfolio"))
	require.NoError(t, s.SetStringSet("pinned_symbols", []string{"TCS", "INFY", "TCS"}))

	_, err = os.Stat(s.Path())
	require.NoError(t, err)

	reopened, err := Open(dir, "widgets")
	require.NoError(t, err)
	assert.True(t, reopened.GetBool("news_pinned", false))
	assert.Equal(t, "news,portfolio", reopened.GetString("widget_order", ""))
	assert.Equal(t, []string{"INFY", "TCS"}, reopened.GetStringSet("pinned_symbols"))
}

// go test -v --run TestStoreEdit
func TestStoreEdit(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, "widgets")
	require.NoError(t, err)

	require.NoError(t, s.Edit(func(e *Editor) {
		e.Set("portfolio_pinned", true)
		e.Set("watchlist_pinned", true)
	}))

	reopened, err := Open(dir, "widgets")
	require.NoError(t, err)
	assert.True(t, reopened.GetBool("portfolio_pinned", false))
	assert.True(t, reopened.GetBool("watchlist_pinned", false))
}

// go test -v --run TestStoreCorruptFile
func TestStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/widgets.yaml", []byte("::: not yaml :::\n\t- ["), 0o644))

	_, err := Open(dir, "widgets")
	assert.Error(t, err)
}
