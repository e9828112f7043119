package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/SoarinFerret/FocusWarden/internal/engine"
	"github.com/SoarinFerret/FocusWarden/internal/journal"
	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
)

// Client calls a running focuswardend over the session bus.
type Client struct {
	obj dbus.BusObject
}

func NewClient(conn *dbus.Conn) *Client {
	return &Client{obj: conn.Object(ServiceName, dbus.ObjectPath(ObjectPath))}
}

func (c *Client) call(method string, args ...any) (string, error) {
	var result string
	if err := c.obj.Call(InterfaceName+"."+method, 0, args...).Store(&result); err != nil {
		return "", fmt.Errorf("%s: %w", method, err)
	}
	return result, nil
}

func (c *Client) status(method string, args ...any) (pomodoro.Status, error) {
	var st pomodoro.Status
	data, err := c.call(method, args...)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return st, fmt.Errorf("failed to decode status: %w", err)
	}
	return st, nil
}

func (c *Client) Status() (pomodoro.Status, error) {
	return c.status("GetStatus")
}

func (c *Client) Start() (pomodoro.Status, error) {
	return c.status("Start")
}

func (c *Client) Pause() (pomodoro.Status, error) {
	return c.status("Pause")
}

func (c *Client) Toggle() (pomodoro.Status, error) {
	return c.status("Toggle")
}

func (c *Client) Skip() (pomodoro.Status, error) {
	return c.status("Skip")
}

func (c *Client) Reset() (pomodoro.Status, error) {
	return c.status("Reset")
}

// SetDuration clamps to the accepted range before narrowing to the bus type.
func (c *Client) SetDuration(seconds int) (pomodoro.Status, error) {
	seconds = max(0, min(seconds, pomodoro.MaxSeconds))
	return c.status("SetDuration", int32(seconds))
}

func (c *Client) Confirm() (pomodoro.Status, error) {
	return c.status("Confirm")
}

func (c *Client) Stats() (engine.Stats, error) {
	var stats engine.Stats
	data, err := c.call("GetStats")
	if err != nil {
		return stats, err
	}
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return stats, fmt.Errorf("failed to decode stats: %w", err)
	}
	return stats, nil
}

func (c *Client) History(limit int) ([]journal.Entry, error) {
	data, err := c.call("GetHistory", int32(limit))
	if err != nil {
		return nil, err
	}
	var entries []journal.Entry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return entries, nil
}

// Config returns the daemon's configuration as TOML.
func (c *Client) Config() (string, error) {
	return c.call("GetConfig")
}

// UpdateTimer sends only the given fields; the daemon keeps the rest.
func (c *Client) UpdateTimer(fields map[string]any) (pomodoro.Settings, error) {
	var s pomodoro.Settings
	patch, err := json.Marshal(fields)
	if err != nil {
		return s, err
	}
	data, err := c.call("UpdateTimer", string(patch))
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return s, fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}

func (c *Client) Export() (string, error) {
	return c.call("Export")
}

func (c *Client) Import(data string) error {
	if call := c.obj.Call(InterfaceName+".Import", 0, data); call.Err != nil {
		return fmt.Errorf("Import: %w", call.Err)
	}
	return nil
}
