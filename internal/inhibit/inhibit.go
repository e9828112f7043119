package inhibit

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	screenSaverDest  = "org.freedesktop.ScreenSaver"
	screenSaverPath  = "/org/freedesktop/ScreenSaver"
	screenSaverIface = "org.freedesktop.ScreenSaver"
)

// Inhibitor keeps the screen awake while a session runs.
type Inhibitor struct {
	obj     dbus.BusObject
	appName string

	mu     sync.Mutex
	cookie uint32
	held   bool
}

func New(conn *dbus.Conn, appName string) *Inhibitor {
	return &Inhibitor{
		obj:     conn.Object(screenSaverDest, dbus.ObjectPath(screenSaverPath)),
		appName: appName,
	}
}

// Set acquires or releases the inhibit to match active. Repeated calls with
// the same value are no-ops.
func (i *Inhibitor) Set(active bool, reason string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if active == i.held {
		return nil
	}
	if active {
		var cookie uint32
		err := i.obj.Call(screenSaverIface+".Inhibit", 0, i.appName, reason).Store(&cookie)
		if err != nil {
			return fmt.Errorf("failed to inhibit screensaver: %w", err)
		}
		i.cookie = cookie
		i.held = true
		return nil
	}

	call := i.obj.Call(screenSaverIface+".UnInhibit", 0, i.cookie)
	i.held = false
	i.cookie = 0
	if call.Err != nil {
		return fmt.Errorf("failed to release screensaver inhibit: %w", call.Err)
	}
	return nil
}
