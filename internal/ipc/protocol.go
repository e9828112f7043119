package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/pelletier/go-toml/v2"

	"github.com/SoarinFerret/FocusWarden/internal/config"
	"github.com/SoarinFerret/FocusWarden/internal/engine"
	"github.com/SoarinFerret/FocusWarden/internal/journal"
	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
)

const (
	ObjectPath    = "/io/github/soarinferret/focuswarden"
	InterfaceName = "io.github.soarinferret.focuswarden.Manager"
	ServiceName   = "io.github.soarinferret.focuswarden"
)

// ErrNothingPending is returned by Confirm when no alarm is waiting.
var ErrNothingPending = errors.New("no session is awaiting confirmation")

// Controller is the part of the engine exposed on the bus.
type Controller interface {
	Status() pomodoro.Status
	Stats(ctx context.Context) (engine.Stats, error)
	History(ctx context.Context, limit int) ([]journal.Entry, error)
	Config() config.Config
	Start() pomodoro.Status
	Pause() pomodoro.Status
	Toggle() pomodoro.Status
	Skip(ctx context.Context) pomodoro.Status
	Reset(ctx context.Context) pomodoro.Status
	SetDuration(seconds int) (pomodoro.Status, error)
	Confirm() (pomodoro.Status, bool)
	UpdateTimer(s pomodoro.Settings) (pomodoro.Settings, error)
	Export() ([]byte, error)
	Import(data []byte) error
}

// SessionManager is exported on the session bus. Structured replies are
// JSON strings so the CLI does not need D-Bus struct signatures.
type SessionManager struct {
	Engine Controller
}

func encode(v any) (string, *dbus.Error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return string(data), nil
}

func (s *SessionManager) GetStatus() (string, *dbus.Error) {
	return encode(s.Engine.Status())
}

func (s *SessionManager) GetStats() (string, *dbus.Error) {
	stats, err := s.Engine.Stats(context.Background())
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return encode(stats)
}

func (s *SessionManager) GetHistory(limit int32) (string, *dbus.Error) {
	entries, err := s.Engine.History(context.Background(), int(limit))
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return encode(entries)
}

// GetConfig returns the running configuration as TOML.
func (s *SessionManager) GetConfig() (string, *dbus.Error) {
	data, err := toml.Marshal(s.Engine.Config())
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return string(data), nil
}

func (s *SessionManager) Start() (string, *dbus.Error) {
	return encode(s.Engine.Start())
}

func (s *SessionManager) Pause() (string, *dbus.Error) {
	return encode(s.Engine.Pause())
}

func (s *SessionManager) Toggle() (string, *dbus.Error) {
	return encode(s.Engine.Toggle())
}

func (s *SessionManager) Skip() (string, *dbus.Error) {
	return encode(s.Engine.Skip(context.Background()))
}

func (s *SessionManager) Reset() (string, *dbus.Error) {
	return encode(s.Engine.Reset(context.Background()))
}

func (s *SessionManager) SetDuration(seconds int32) (string, *dbus.Error) {
	st, err := s.Engine.SetDuration(int(seconds))
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return encode(st)
}

func (s *SessionManager) Confirm() (string, *dbus.Error) {
	st, ok := s.Engine.Confirm()
	if !ok {
		return "", dbus.MakeFailedError(ErrNothingPending)
	}
	return encode(st)
}

// UpdateTimer takes timer settings as JSON and returns the applied values.
func (s *SessionManager) UpdateTimer(settings string) (string, *dbus.Error) {
	current := s.Engine.Config().Timer.Settings()
	if err := json.Unmarshal([]byte(settings), &current); err != nil {
		return "", dbus.MakeFailedError(fmt.Errorf("invalid timer settings: %w", err))
	}
	applied, err := s.Engine.UpdateTimer(current)
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return encode(applied)
}

func (s *SessionManager) Export() (string, *dbus.Error) {
	data, err := s.Engine.Export()
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return string(data), nil
}

func (s *SessionManager) Import(data string) *dbus.Error {
	if err := s.Engine.Import([]byte(data)); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

const introspectXML = `
<node>
	<interface name="` + InterfaceName + `">
		<method name="GetStatus"><arg direction="out" type="s"/></method>
		<method name="GetStats"><arg direction="out" type="s"/></method>
		<method name="GetHistory"><arg direction="in" type="i"/><arg direction="out" type="s"/></method>
		<method name="GetConfig"><arg direction="out" type="s"/></method>
		<method name="Start"><arg direction="out" type="s"/></method>
		<method name="Pause"><arg direction="out" type="s"/></method>
		<method name="Toggle"><arg direction="out" type="s"/></method>
		<method name="Skip"><arg direction="out" type="s"/></method>
		<method name="Reset"><arg direction="out" type="s"/></method>
		<method name="SetDuration"><arg direction="in" type="i"/><arg direction="out" type="s"/></method>
		<method name="Confirm"><arg direction="out" type="s"/></method>
		<method name="UpdateTimer"><arg direction="in" type="s"/><arg direction="out" type="s"/></method>
		<method name="Export"><arg direction="out" type="s"/></method>
		<method name="Import"><arg direction="in" type="s"/></method>
	</interface>` + introspect.IntrospectDataString + `</node>`

// Register claims the service name and exports the manager on conn.
func Register(conn *dbus.Conn, ctrl Controller) error {
	reply, err := conn.RequestName(ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("name %s already taken, is focuswardend already running?", ServiceName)
	}

	sm := &SessionManager{Engine: ctrl}
	if err := conn.Export(sm, dbus.ObjectPath(ObjectPath), InterfaceName); err != nil {
		return fmt.Errorf("failed to export interface: %w", err)
	}
	if err := conn.Export(introspect.Introspectable(introspectXML), dbus.ObjectPath(ObjectPath), "org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspection: %w", err)
	}
	return nil
}
