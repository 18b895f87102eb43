package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meszmate/sessionroster/internal/domain"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir, "/data")
	require.NoError(t, err)

	require.Equal(t, "nord", cfg.UI.Theme)
	require.Equal(t, 30, cfg.UI.SidebarWidth)
	require.True(t, cfg.Storage.CacheRoster)
	require.Equal(t, "/data", cfg.General.DataDir)
	require.Equal(t, filepath.Join("/data", "plugins"), cfg.Plugins.PluginDir)
	require.Equal(t, filepath.Join("/data", "sessionroster.log"), cfg.Logging.File)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[general]
data_dir = "/srv/roster"

[ui]
theme = "gruvbox"
show_offline = false

[notifications]
desktop = false

[plugins]
enabled = ["desktopnotify"]

[logging]
level = "debug"
`), 0600))

	cfg, err := Load(dir, "/data")
	require.NoError(t, err)
	require.Equal(t, "gruvbox", cfg.UI.Theme)
	require.False(t, cfg.UI.ShowOffline)
	require.Equal(t, 30, cfg.UI.SidebarWidth)
	require.True(t, cfg.Notifications.Enabled)
	require.False(t, cfg.Notifications.Desktop)
	require.Equal(t, []string{"desktopnotify"}, cfg.Plugins.Enabled)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "/srv/roster", cfg.General.DataDir)
	require.Equal(t, filepath.Join("/srv/roster", "plugins"), cfg.Plugins.PluginDir)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[ui\n"), 0600))

	_, err := Load(dir, "/data")
	require.Error(t, err)
}

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.UI.Theme = "gruvbox"
	require.NoError(t, Save(dir, cfg))

	loaded, err := Load(dir, "/data")
	require.NoError(t, err)
	require.Equal(t, "gruvbox", loaded.UI.Theme)
}

func TestBookmarks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accounts.toml"), []byte(`
[[accounts]]
jid = "alice@example.org/laptop"
auto_connect = true
use_keyring = true

[[accounts]]
jid = "work@example.com"
password = "hunter2"
auto_connect = false

[[accounts]]
jid = "bob@example.org"
auto_connect = true
port = 5223
`), 0600))

	b := NewBookmarks(dir)
	ids, err := b.LoadBookmarks()
	require.NoError(t, err)
	require.Equal(t, []domain.AccountID{"alice@example.org", "bob@example.org"}, ids)

	acc, err := b.Lookup("work@example.com")
	require.NoError(t, err)
	require.Equal(t, "hunter2", acc.Password)
	require.Equal(t, 5222, acc.Port)
	require.Equal(t, "sessionroster", acc.Resource)

	_, err = b.Lookup("carol@example.org")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestBookmarksUpsert(t *testing.T) {
	dir := t.TempDir()
	b := NewBookmarks(dir)

	ids, err := b.LoadBookmarks()
	require.NoError(t, err)
	require.Empty(t, ids)

	require.NoError(t, b.Upsert(Account{JID: "alice@example.org", AutoConnect: true, UseKeyring: true}))
	require.NoError(t, b.Upsert(Account{JID: "bob@example.org", AutoConnect: true}))
	require.NoError(t, b.Upsert(Account{JID: "alice@example.org/laptop", AutoConnect: false, Password: "pw"}))

	accounts, err := LoadAccounts(dir)
	require.NoError(t, err)
	require.Len(t, accounts.Accounts, 2)
	require.Equal(t, "pw", accounts.Accounts[0].Password)

	ids, err = b.LoadBookmarks()
	require.NoError(t, err)
	require.Equal(t, []domain.AccountID{"bob@example.org"}, ids)
}
