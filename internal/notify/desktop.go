package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/meszmate/sessionroster/pkg/plugin"
)

// Desktop shows notifications with the notifier of the operating system
type Desktop struct {
	goos string
	run  func(name string, args ...string) error
}

// NewDesktop creates a desktop notifier for the running system
func NewDesktop() *Desktop {
	return &Desktop{
		goos: runtime.GOOS,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Name returns the notifier name
func (d *Desktop) Name() string {
	return "desktop"
}

// Notify shows n. Systems without a supported notifier are ignored.
func (d *Desktop) Notify(n plugin.Notification) error {
	switch d.goos {
	case "darwin":
		script := fmt.Sprintf(`display notification %s with title %s`, quote(n.Body), quote(n.Title))
		return d.run("osascript", "-e", script)
	case "linux", "freebsd", "openbsd":
		return d.run("notify-send", "--app-name=sessionroster", n.Title, n.Body)
	default:
		return nil
	}
}

// quote returns s as an AppleScript string literal
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
