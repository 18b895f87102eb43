// Command desktopnotify is a notification plugin showing desktop
// notifications. Install it into the plugin directory and enable it in
// config.toml.
package main

import (
	"github.com/meszmate/sessionroster/internal/notify"
	"github.com/meszmate/sessionroster/pkg/plugin"
)

type desktopNotifier struct {
	*notify.Desktop
}

// Name returns the plugin name
func (desktopNotifier) Name() string {
	return "desktopnotify"
}

func main() {
	plugin.Serve(desktopNotifier{notify.NewDesktop()})
}
