// Package plugin defines the contract of notification plugins and hosts them
// as separate processes.
package plugin

import (
	"net/rpc"
	"time"

	"github.com/hashicorp/go-plugin"
)

// Notifier is the interface notification plugins implement
type Notifier interface {
	// Name returns the plugin name
	Name() string

	// Notify delivers a notification to the user
	Notify(n Notification) error
}

// Notification is a message to show to the user
type Notification struct {
	ID        string
	Account   string
	From      string
	Title     string
	Body      string
	Timestamp time.Time
}

// Handshake is the plugin handshake config
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "SESSIONROSTER_PLUGIN",
	MagicCookieValue: "notifier",
}

// PluginName is the name notifiers are dispensed under
const PluginName = "notifier"

// PluginMap is the plugin type map
var PluginMap = map[string]plugin.Plugin{
	PluginName: &NotifierPlugin{},
}

// Serve runs impl as a plugin process. It is called from the plugin's main.
func Serve(impl Notifier) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			PluginName: &NotifierPlugin{Impl: impl},
		},
	})
}

// NotifierPlugin serves a Notifier over net/rpc
type NotifierPlugin struct {
	Impl Notifier
}

// Server returns the RPC server of the plugin process
func (p *NotifierPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &RPCServer{Impl: p.Impl}, nil
}

// Client returns the Notifier used by the host
func (p *NotifierPlugin) Client(_ *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &RPCClient{client: c}, nil
}

// RPCClient calls a Notifier in a plugin process
type RPCClient struct {
	client *rpc.Client
}

// Name returns the plugin name
func (c *RPCClient) Name() string {
	var name string
	if err := c.client.Call("Plugin.Name", new(interface{}), &name); err != nil {
		return ""
	}
	return name
}

// Notify delivers n to the plugin
func (c *RPCClient) Notify(n Notification) error {
	return c.client.Call("Plugin.Notify", n, new(interface{}))
}

// RPCServer exposes a Notifier to the host
type RPCServer struct {
	Impl Notifier
}

// Name returns the plugin name
func (s *RPCServer) Name(_ interface{}, name *string) error {
	*name = s.Impl.Name()
	return nil
}

// Notify delivers n
func (s *RPCServer) Notify(n Notification, _ *interface{}) error {
	return s.Impl.Notify(n)
}
