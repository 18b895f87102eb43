package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"github.com/meszmate/sessionroster/internal/app"
	"github.com/meszmate/sessionroster/internal/client"
	"github.com/meszmate/sessionroster/internal/config"
	"github.com/meszmate/sessionroster/internal/domain"
	"github.com/meszmate/sessionroster/internal/keyring"
	"github.com/meszmate/sessionroster/internal/logging"
	"github.com/meszmate/sessionroster/internal/notify"
	"github.com/meszmate/sessionroster/internal/storage/sqlite"
	"github.com/meszmate/sessionroster/internal/ui"
	"github.com/meszmate/sessionroster/internal/xmpp"
	"github.com/meszmate/sessionroster/pkg/plugin"
)

const userInfoTimeout = 5 * time.Second

func main() {
	configDir := flag.String("config-dir", "", "directory holding config.toml and accounts.toml")
	logLevel := flag.String("log-level", "", "override the configured log level")
	noPlugins := flag.Bool("no-plugins", false, "do not load notification plugins")
	flag.Parse()

	if err := run(*configDir, *logLevel, *noPlugins); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configDir, logLevel string, noPlugins bool) error {
	paths, err := config.GetPaths()
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	if configDir != "" {
		paths.ConfigDir = configDir
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	cfg, err := config.Load(paths.ConfigDir, paths.DataDir)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if cfg.Logging.File == "" && !cfg.Logging.Console {
		cfg.Logging.File = filepath.Join(cfg.General.DataDir, "sessionroster.log")
	}

	logger, err := logging.New(logging.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
	})
	if err != nil {
		return err
	}
	defer logger.Close()

	bookmarks := config.NewBookmarks(paths.ConfigDir)
	credentials := keyring.New(bookmarks, logger)

	hub := xmpp.NewHub(xmpp.Dial(logger), cfg.Storage.ChatHistory, logger)
	defer hub.Close()

	var source client.EventSource = hub
	if cfg.Storage.CacheRoster {
		db, err := sqlite.New(cfg.General.DataDir)
		if err != nil {
			logger.Warn("Roster cache disabled. %v", err)
		} else {
			defer db.Close()
			source = sqlite.NewCachedSource(hub, db, logger)
		}
	}

	host := plugin.NewHost(cfg.Plugins.PluginDir)
	defer host.UnloadAll()
	if !noPlugins {
		if err := host.LoadAll(cfg.Plugins.Enabled); err != nil {
			logger.Warn("Some plugins failed to load. %v", err)
		}
	}

	sinks := []notify.Sink{host}
	if cfg.Notifications.Desktop {
		sinks = append(sinks, notify.NewDesktop())
	}
	notifier := notify.NewScheduler(cfg.Notifications.Enabled, logger, sinks...)

	application := app.New(app.Dependencies{
		Source:       source,
		Accounts:     hub,
		Connectivity: hub,
		Bookmarks:    bookmarks,
		Credentials:  credentials,
		Notifier:     notifier,
		Logger:       logger,
	})
	defer application.Close()

	model := ui.NewModel(application, ui.Options{
		Theme:       cfg.UI.Theme,
		ThemeDirs:   []string{filepath.Join(paths.ConfigDir, "themes")},
		RosterWidth: cfg.UI.SidebarWidth,
		ShowOffline: cfg.UI.ShowOffline,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	application.SetSender(p)
	hub.SetMessageHandler(func(account domain.AccountID, msg domain.Message) {
		from := domain.UserInfo{JID: msg.From}
		ctx, cancel := context.WithTimeout(context.Background(), userInfoTimeout)
		infos, err := hub.UserInfos(ctx, account, []domain.AccountID{msg.From})
		cancel()
		if err == nil {
			if info, ok := infos[msg.From]; ok {
				from = info
			}
		}
		p.Send(app.DidReceiveMessage{Message: msg, From: from})
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
