package alarm

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsDest = "org.freedesktop.Notifications"
	notificationsPath = "/org/freedesktop/Notifications"
)

// DesktopNotifier posts notifications through org.freedesktop.Notifications.
// Repeats replace the previous popup instead of stacking new ones.
type DesktopNotifier struct {
	obj     dbus.BusObject
	appName string

	mu     sync.Mutex
	lastID uint32
}

func NewDesktopNotifier(conn *dbus.Conn, appName string) *DesktopNotifier {
	return &DesktopNotifier{
		obj:     conn.Object(notificationsDest, dbus.ObjectPath(notificationsPath)),
		appName: appName,
	}
}

func (d *DesktopNotifier) Notify(ctx context.Context, a Alert) error {
	if a.NoPopup {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	urgency := byte(1)
	timeout := int32(10000)
	if a.Urgent {
		urgency = 2
		timeout = 0 // stays until dismissed
	}
	hints := map[string]dbus.Variant{
		"urgency":  dbus.MakeVariant(urgency),
		"category": dbus.MakeVariant("presence"),
	}
	switch {
	case !a.Sound:
		hints["suppress-sound"] = dbus.MakeVariant(true)
	case a.SoundFile != "":
		hints["sound-file"] = dbus.MakeVariant(a.SoundFile)
	case a.SoundName != "":
		hints["sound-name"] = dbus.MakeVariant(a.SoundName)
	}

	call := d.obj.CallWithContext(ctx, notificationsDest+".Notify", 0,
		d.appName,        // app_name
		d.lastID,         // replaces_id
		"alarm-symbolic", // app_icon
		a.Title,          // summary
		a.Body,           // body
		[]string{},       // actions
		hints,            // hints
		timeout,          // expire_timeout
	)
	if call.Err != nil {
		return fmt.Errorf("failed to send notification: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("failed to read notification id: %w", err)
	}
	d.lastID = id
	return nil
}

// Close withdraws the last popup.
func (d *DesktopNotifier) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.lastID == 0 {
		return nil
	}
	call := d.obj.CallWithContext(ctx, notificationsDest+".CloseNotification", 0, d.lastID)
	d.lastID = 0
	return call.Err
}
