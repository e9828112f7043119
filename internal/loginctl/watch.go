package loginctl

import (
	"context"
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
)

const (
	login1Dest    = "org.freedesktop.login1"
	login1Path    = "/org/freedesktop/login1"
	managerIface  = "org.freedesktop.login1.Manager"
	sessionIface  = "org.freedesktop.login1.Session"
	propertiesSig = "org.freedesktop.DBus.Properties.PropertiesChanged"
	sleepSig      = managerIface + ".PrepareForSleep"
)

// Pauser is the part of the engine the watcher drives.
type Pauser interface {
	Status() pomodoro.Status
	Pause() pomodoro.Status
}

// Options selects which logind events pause the timer.
type Options struct {
	OnSleep bool
	OnLock  bool
}

type watcher struct {
	timer  Pauser
	opts   Options
	owns   func(dbus.ObjectPath) bool
	logger zerolog.Logger
}

// Watch pauses the running timer when the machine suspends or one of the
// current user's sessions locks.
func Watch(ctx context.Context, timer Pauser, opts Options, logger zerolog.Logger) error {
	if !opts.OnSleep && !opts.OnLock {
		return nil
	}
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer conn.Close()

	if opts.OnSleep {
		if err := conn.AddMatchSignal(
			dbus.WithMatchObjectPath(login1Path),
			dbus.WithMatchInterface(managerIface),
			dbus.WithMatchMember("PrepareForSleep"),
		); err != nil {
			return fmt.Errorf("add match failed: %w", err)
		}
	}
	if opts.OnLock {
		// watch for property changes (session locked)
		if err := conn.AddMatchSignal(
			dbus.WithMatchSender(login1Dest),
			dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
			dbus.WithMatchMember("PropertiesChanged"),
		); err != nil {
			return fmt.Errorf("add match for PropertiesChanged failed: %w", err)
		}
	}

	w := &watcher{
		timer: timer,
		opts:  opts,
		owns: func(p dbus.ObjectPath) bool {
			uid, err := sessionUID(conn, p)
			return err == nil && uid == uint32(os.Getuid())
		},
		logger: logger.With().Str("component", "loginctl").Logger(),
	}

	c := make(chan *dbus.Signal, 10)
	conn.Signal(c)
	defer conn.RemoveSignal(c)

	w.logger.Info().Bool("sleep", opts.OnSleep).Bool("lock", opts.OnLock).Msg("Watching logind")
	for {
		select {
		case sig := <-c:
			if sig != nil {
				w.handle(sig)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *watcher) handle(sig *dbus.Signal) {
	switch sig.Name {
	case sleepSig:
		if !w.opts.OnSleep || len(sig.Body) == 0 {
			return
		}
		if sleeping, _ := sig.Body[0].(bool); sleeping {
			w.pause("System is going to sleep")
		}

	case propertiesSig:
		if !w.opts.OnLock || len(sig.Body) < 3 {
			return
		}
		iface, ok := sig.Body[0].(string)
		if !ok || iface != sessionIface {
			return
		}
		changedProps, ok := sig.Body[1].(map[string]dbus.Variant)
		if !ok {
			return
		}
		val, exists := changedProps["LockedHint"]
		if !exists {
			return
		}
		if locked, _ := val.Value().(bool); locked && w.owns(sig.Path) {
			w.pause("Session locked")
		}
	}
}

func (w *watcher) pause(reason string) {
	if !w.timer.Status().Running {
		return
	}
	st := w.timer.Pause()
	w.logger.Info().Str("reason", reason).Int("remaining", st.Remaining).Msg("Paused timer")
}

// sessionUID reads the owning uid of a logind session.
func sessionUID(conn *dbus.Conn, sessionPath dbus.ObjectPath) (uint32, error) {
	sessionObj := conn.Object(login1Dest, sessionPath)

	var user dbus.Variant
	err := sessionObj.Call("org.freedesktop.DBus.Properties.Get", 0, sessionIface, "User").Store(&user)
	if err != nil {
		return 0, fmt.Errorf("failed to get user info: %w", err)
	}
	userInfo, ok := user.Value().([]interface{})
	if !ok || len(userInfo) < 2 {
		return 0, fmt.Errorf("unexpected type for session user")
	}
	uid, ok := userInfo[0].(uint32)
	if !ok {
		return 0, fmt.Errorf("unexpected type for session uid")
	}
	return uid, nil
}
