// Package config loads the application configuration and the saved accounts.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/meszmate/sessionroster/internal/domain"
)

// ErrAccountNotFound is returned for accounts missing from accounts.toml
var ErrAccountNotFound = errors.New("account not found")

const appName = "sessionroster"

// Config represents the main application configuration
type Config struct {
	General       GeneralConfig       `toml:"general"`
	UI            UIConfig            `toml:"ui"`
	Notifications NotificationsConfig `toml:"notifications"`
	Plugins       PluginsConfig       `toml:"plugins"`
	Logging       LoggingConfig       `toml:"logging"`
	Storage       StorageConfig       `toml:"storage"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	DataDir     string `toml:"data_dir"`
	AutoConnect bool   `toml:"auto_connect"`
}

// UIConfig contains UI-related settings
type UIConfig struct {
	Theme        string `toml:"theme"`
	SidebarWidth int    `toml:"sidebar_width"`
	ShowOffline  bool   `toml:"show_offline"`
}

// NotificationsConfig contains notification settings
type NotificationsConfig struct {
	Enabled bool `toml:"enabled"`
	Desktop bool `toml:"desktop"`
}

// PluginsConfig contains plugin settings
type PluginsConfig struct {
	Enabled   []string `toml:"enabled"`
	PluginDir string   `toml:"plugin_dir"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level   string `toml:"level"`
	File    string `toml:"file"`
	Console bool   `toml:"console"`
}

// StorageConfig contains storage settings
type StorageConfig struct {
	// CacheRoster keeps rosters and unread counts between runs
	CacheRoster bool `toml:"cache_roster"`

	// ChatHistory is the number of messages kept in memory per conversation
	ChatHistory int `toml:"chat_history"`
}

// Account represents a saved XMPP account
type Account struct {
	JID         string `toml:"jid"`
	Password    string `toml:"password,omitempty"`
	UseKeyring  bool   `toml:"use_keyring"`
	AutoConnect bool   `toml:"auto_connect"`
	Server      string `toml:"server,omitempty"`
	Port        int    `toml:"port,omitempty"`
	Resource    string `toml:"resource,omitempty"`
}

// AccountsConfig contains all account configurations
type AccountsConfig struct {
	Accounts []Account `toml:"accounts"`
}

// Paths holds the XDG-compliant paths for the application
type Paths struct {
	ConfigDir string
	DataDir   string
	CacheDir  string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			AutoConnect: true,
		},
		UI: UIConfig{
			Theme:        "nord",
			SidebarWidth: 30,
			ShowOffline:  true,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Desktop: true,
		},
		Plugins: PluginsConfig{
			Enabled: []string{},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			CacheRoster: true,
			ChatHistory: 100,
		},
	}
}

func xdgDir(env string, fallback ...string) (string, error) {
	dir := os.Getenv(env)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(append([]string{home}, fallback...)...)
	}
	return filepath.Join(dir, appName), nil
}

// GetPaths returns XDG-compliant paths for the application
func GetPaths() (*Paths, error) {
	configDir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return nil, err
	}
	dataDir, err := xdgDir("XDG_DATA_HOME", ".local", "share")
	if err != nil {
		return nil, err
	}
	cacheDir, err := xdgDir("XDG_CACHE_HOME", ".cache")
	if err != nil {
		return nil, err
	}

	return &Paths{
		ConfigDir: configDir,
		DataDir:   dataDir,
		CacheDir:  cacheDir,
	}, nil
}

// EnsureDirectories creates the necessary directories
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.ConfigDir, p.DataDir, p.CacheDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Load loads config.toml from dir. Missing files yield the defaults. Relative
// data paths default to defaultDataDir.
func Load(dir, defaultDataDir string) (*Config, error) {
	cfg := DefaultConfig()
	configPath := filepath.Join(dir, "config.toml")

	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if cfg.General.DataDir == "" {
		cfg.General.DataDir = defaultDataDir
	} else {
		cfg.General.DataDir = expandPath(cfg.General.DataDir)
	}

	if cfg.Plugins.PluginDir == "" {
		cfg.Plugins.PluginDir = filepath.Join(cfg.General.DataDir, "plugins")
	} else {
		cfg.Plugins.PluginDir = expandPath(cfg.Plugins.PluginDir)
	}

	if cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(cfg.General.DataDir, appName+".log")
	} else {
		cfg.Logging.File = expandPath(cfg.Logging.File)
	}

	if cfg.UI.SidebarWidth <= 0 {
		cfg.UI.SidebarWidth = DefaultConfig().UI.SidebarWidth
	}

	return cfg, nil
}

// Save saves the configuration to config.toml in dir
func Save(dir string, cfg *Config) error {
	return writeTOML(filepath.Join(dir, "config.toml"), cfg)
}

// LoadAccounts loads accounts.toml from dir
func LoadAccounts(dir string) (*AccountsConfig, error) {
	accountsPath := filepath.Join(dir, "accounts.toml")

	if _, err := os.Stat(accountsPath); os.IsNotExist(err) {
		return &AccountsConfig{Accounts: []Account{}}, nil
	}

	var accounts AccountsConfig
	if _, err := toml.DecodeFile(accountsPath, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}

	for i := range accounts.Accounts {
		if accounts.Accounts[i].Port == 0 {
			accounts.Accounts[i].Port = 5222
		}
		if accounts.Accounts[i].Resource == "" {
			accounts.Accounts[i].Resource = appName
		}
	}

	return &accounts, nil
}

// SaveAccounts saves account configurations to accounts.toml in dir
func SaveAccounts(dir string, accounts *AccountsConfig) error {
	return writeTOML(filepath.Join(dir, "accounts.toml"), accounts)
}

func writeTOML(path string, v interface{}) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// Bookmarks gives access to the accounts saved in accounts.toml
type Bookmarks struct {
	mu  sync.Mutex
	dir string
}

// NewBookmarks returns the bookmarks stored in dir
func NewBookmarks(dir string) *Bookmarks {
	return &Bookmarks{dir: dir}
}

// LoadBookmarks returns the ids of the accounts to connect on startup, in
// file order
func (b *Bookmarks) LoadBookmarks() ([]domain.AccountID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	accounts, err := LoadAccounts(b.dir)
	if err != nil {
		return nil, err
	}

	ids := make([]domain.AccountID, 0, len(accounts.Accounts))
	for _, acc := range accounts.Accounts {
		if !acc.AutoConnect {
			continue
		}
		id, err := domain.ParseAccountID(acc.JID)
		if err != nil {
			return nil, fmt.Errorf("invalid account %q: %w", acc.JID, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Lookup returns the saved account id
func (b *Bookmarks) Lookup(id domain.AccountID) (Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	accounts, err := LoadAccounts(b.dir)
	if err != nil {
		return Account{}, err
	}
	for _, acc := range accounts.Accounts {
		if parsed, err := domain.ParseAccountID(acc.JID); err == nil && parsed == id {
			return acc, nil
		}
	}
	return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
}

// Upsert saves account, replacing the entry with the same JID
func (b *Bookmarks) Upsert(account Account) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	accounts, err := LoadAccounts(b.dir)
	if err != nil {
		return err
	}
	for i, acc := range accounts.Accounts {
		if sameAccount(acc.JID, account.JID) {
			accounts.Accounts[i] = account
			return SaveAccounts(b.dir, accounts)
		}
	}
	accounts.Accounts = append(accounts.Accounts, account)
	return SaveAccounts(b.dir, accounts)
}

func sameAccount(a, b string) bool {
	ida, erra := domain.ParseAccountID(a)
	idb, errb := domain.ParseAccountID(b)
	if erra != nil || errb != nil {
		return a == b
	}
	return ida == idb
}
