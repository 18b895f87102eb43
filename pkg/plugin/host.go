package plugin

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

// Host manages plugin lifecycle
type Host struct {
	mu        sync.RWMutex
	plugins   map[string]*LoadedPlugin
	pluginDir string
}

// LoadedPlugin represents a loaded plugin
type LoadedPlugin struct {
	Name     string
	Path     string
	Notifier Notifier
	Client   *plugin.Client
}

// NewHost creates a new plugin host
func NewHost(pluginDir string) *Host {
	return &Host{
		plugins:   make(map[string]*LoadedPlugin),
		pluginDir: pluginDir,
	}
}

// LoadAll loads the enabled plugins from the plugin directory. It returns
// the failures of the plugins that could not be loaded.
func (h *Host) LoadAll(enabled []string) error {
	if h.pluginDir == "" || len(enabled) == 0 {
		return nil
	}

	var errs []error
	for _, name := range enabled {
		path := filepath.Join(h.pluginDir, name)
		if _, err := os.Stat(path); err != nil {
			errs = append(errs, fmt.Errorf("plugin %s: %w", name, err))
			continue
		}
		if err := h.Load(name, path); err != nil {
			errs = append(errs, fmt.Errorf("plugin %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Load starts the plugin binary at path and registers it as name
func (h *Host) Load(name, path string) error {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: Handshake,
		Plugins:         PluginMap,
		Cmd:             exec.Command(path),
		Logger:          hclog.NewNullLogger(),
		AllowedProtocols: []plugin.Protocol{
			plugin.ProtocolNetRPC,
		},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return fmt.Errorf("failed to connect to plugin: %w", err)
	}

	raw, err := rpcClient.Dispense(PluginName)
	if err != nil {
		client.Kill()
		return fmt.Errorf("failed to dispense plugin: %w", err)
	}

	n, ok := raw.(Notifier)
	if !ok {
		client.Kill()
		return fmt.Errorf("plugin does not implement the notifier interface")
	}

	h.add(&LoadedPlugin{Name: name, Path: path, Notifier: n, Client: client})
	return nil
}

func (h *Host) add(lp *LoadedPlugin) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev := h.plugins[lp.Name]; prev != nil && prev.Client != nil {
		prev.Client.Kill()
	}
	h.plugins[lp.Name] = lp
}

// Notify delivers n to every loaded plugin
func (h *Host) Notify(n Notification) error {
	h.mu.RLock()
	plugins := make([]*LoadedPlugin, 0, len(h.plugins))
	for _, lp := range h.plugins {
		plugins = append(plugins, lp)
	}
	h.mu.RUnlock()

	var errs []error
	for _, lp := range plugins {
		if err := lp.Notifier.Notify(n); err != nil {
			errs = append(errs, fmt.Errorf("plugin %s: %w", lp.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Unload unloads a plugin
func (h *Host) Unload(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	lp := h.plugins[name]
	if lp == nil {
		return
	}
	if lp.Client != nil {
		lp.Client.Kill()
	}
	delete(h.plugins, name)
}

// UnloadAll unloads all plugins
func (h *Host) UnloadAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for name, lp := range h.plugins {
		if lp.Client != nil {
			lp.Client.Kill()
		}
		delete(h.plugins, name)
	}
}

// List returns the names of the loaded plugins, sorted
func (h *Host) List() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.plugins))
	for name := range h.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
