package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	m := NewManager()
	require.Equal(t, "nord", m.CurrentName())
	require.NotNil(t, m.Styles())
	require.Equal(t, []string{"gruvbox", "nord"}, m.AvailableThemes())
}

func TestLoadThemeFromFile(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`
description = "custom"

[colors]
online = "#00FF00"
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.toml"), data, 0o600))

	m := NewManager(dir)
	require.NoError(t, m.SetTheme("custom"))
	require.Equal(t, "custom", m.CurrentName())
	require.Equal(t, "#00FF00", m.Current().Colors.Online)
	// Missing keys keep the default palette
	require.Equal(t, NordTheme().Colors.Offline, m.Current().Colors.Offline)
}

func TestSetUnknownTheme(t *testing.T) {
	m := NewManager(t.TempDir())
	require.Error(t, m.SetTheme("missing"))
	require.Equal(t, "nord", m.CurrentName())
}
