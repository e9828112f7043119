package alarm

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
)

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []Alert
	closed int
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, a Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return r.err
}

func (r *recordingNotifier) Close(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

func TestNewAlert(t *testing.T) {
	tests := []struct {
		name      string
		ended     pomodoro.Mode
		next      pomodoro.Transition
		sound     Sound
		confirm   bool
		title     string
		soundName string
		soundFile string
	}{
		{
			name:      "focus complete",
			ended:     pomodoro.Focus,
			next:      pomodoro.Transition{Mode: pomodoro.ShortBreak, Duration: 300},
			sound:     Sound{Enabled: true, Type: "pulse"},
			confirm:   true,
			title:     "Session Complete",
			soundName: "alarm-clock-elapsed",
		},
		{
			name:      "break over digital",
			ended:     pomodoro.LongBreak,
			next:      pomodoro.Transition{Mode: pomodoro.Focus, Duration: 1500},
			sound:     Sound{Enabled: true, Type: "digital"},
			title:     "Break Over",
			soundName: "bell",
		},
		{
			name:      "custom sound",
			ended:     pomodoro.ShortBreak,
			next:      pomodoro.Transition{Mode: pomodoro.Focus, Duration: 1500},
			sound:     Sound{Enabled: true, Type: "custom", File: "/tmp/gong.oga"},
			title:     "Break Over",
			soundFile: "/tmp/gong.oga",
		},
		{
			name:  "muted",
			ended: pomodoro.Focus,
			next:  pomodoro.Transition{Mode: pomodoro.LongBreak, Duration: 900},
			sound: Sound{Enabled: false, Type: "digital"},
			title: "Session Complete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAlert(tt.ended, tt.next, tt.sound, tt.confirm)
			assert.Equal(t, tt.title, a.Title)
			assert.Equal(t, tt.soundName, a.SoundName)
			assert.Equal(t, tt.soundFile, a.SoundFile)
			assert.Equal(t, tt.sound.Enabled, a.Sound)
			assert.Equal(t, tt.confirm, a.Urgent)
			assert.Contains(t, a.Body, "Up next: "+tt.next.Mode.Label())
		})
	}
}

func TestSound_RepeatInterval(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, Sound{Type: "digital"}.RepeatInterval())
	assert.Equal(t, 2*time.Second, Sound{Type: "pulse"}.RepeatInterval())
	assert.Equal(t, 2*time.Second, Sound{Type: "custom"}.RepeatInterval())
}

func TestBell(t *testing.T) {
	var buf bytes.Buffer
	b := Bell{W: &buf}

	require.NoError(t, b.Notify(context.Background(), Alert{Title: "Break Over", Sound: true}))
	assert.Equal(t, "\aBreak Over\n", buf.String())

	buf.Reset()
	require.NoError(t, b.Notify(context.Background(), Alert{Title: "Break Over"}))
	assert.Empty(t, buf.String())
}

func TestMulti(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{err: errors.New("no bus")}
	m := Multi{a, b}

	err := m.Notify(context.Background(), Alert{Title: "x"})
	assert.Error(t, err)
	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())

	require.NoError(t, m.Close(context.Background()))
	assert.Equal(t, 1, a.closed)
}

func TestRinger_OnceWithoutInterval(t *testing.T) {
	n := &recordingNotifier{}
	r := NewRinger(n, zerolog.Nop())

	r.Ring(context.Background(), Alert{Title: "x"}, 0)
	assert.Equal(t, 1, n.count())
	assert.False(t, r.Ringing())
}

func TestRinger_RepeatsUntilStopped(t *testing.T) {
	n := &recordingNotifier{}
	r := NewRinger(n, zerolog.Nop())

	r.Ring(context.Background(), Alert{Title: "x"}, 5*time.Millisecond)
	assert.True(t, r.Ringing())
	assert.Eventually(t, func() bool { return n.count() >= 3 }, time.Second, time.Millisecond)

	r.Stop()
	assert.False(t, r.Ringing())
	stopped := n.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, n.count())
	assert.Equal(t, 1, n.closed)

	r.Stop()
	assert.Equal(t, 1, n.closed, "stopping twice is harmless")
}

// gatedNotifier blocks the first Notify until release is closed.
type gatedNotifier struct {
	recordingNotifier
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedNotifier() *gatedNotifier {
	return &gatedNotifier{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedNotifier) Notify(ctx context.Context, a Alert) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.recordingNotifier.Notify(ctx, a)
}

func TestRinger_StopDuringFirstNotify(t *testing.T) {
	n := newGatedNotifier()
	r := NewRinger(n, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		r.Ring(context.Background(), Alert{Title: "x"}, 5*time.Millisecond)
		close(done)
	}()

	<-n.entered
	r.Stop()
	close(n.release)
	<-done

	assert.False(t, r.Ringing())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, n.count(), "no repeats after stop")
	n.mu.Lock()
	assert.Equal(t, 1, n.closed, "the popup is withdrawn")
	n.mu.Unlock()
}

// fakeBusObject records Notify calls and answers with increasing ids.
type fakeBusObject struct {
	dbus.BusObject
	methods []string
	args    [][]interface{}
	nextID  uint32
}

func (f *fakeBusObject) CallWithContext(_ context.Context, method string, _ dbus.Flags, args ...interface{}) *dbus.Call {
	f.methods = append(f.methods, method)
	f.args = append(f.args, args)
	f.nextID++
	return &dbus.Call{Body: []interface{}{f.nextID}}
}

func TestDesktopNotifier(t *testing.T) {
	obj := &fakeBusObject{}
	d := &DesktopNotifier{obj: obj, appName: "FocusWarden"}
	ctx := context.Background()

	require.NoError(t, d.Notify(ctx, Alert{Title: "Session Complete", Body: "b", Urgent: true, Sound: true, SoundName: "bell"}))
	require.NoError(t, d.Notify(ctx, Alert{Title: "Session Complete", Body: "b"}))

	require.Len(t, obj.args, 2)
	assert.Equal(t, "org.freedesktop.Notifications.Notify", obj.methods[0])
	assert.Equal(t, uint32(0), obj.args[0][1], "first popup is new")
	assert.Equal(t, uint32(1), obj.args[1][1], "repeat replaces the first popup")

	hints := obj.args[0][6].(map[string]dbus.Variant)
	assert.Equal(t, byte(2), hints["urgency"].Value())
	assert.Equal(t, "bell", hints["sound-name"].Value())
	assert.Equal(t, int32(0), obj.args[0][7])

	hints = obj.args[1][6].(map[string]dbus.Variant)
	assert.Equal(t, true, hints["suppress-sound"].Value())

	require.NoError(t, d.Close(ctx))
	assert.Equal(t, "org.freedesktop.Notifications.CloseNotification", obj.methods[2])
	assert.Equal(t, uint32(2), obj.args[2][0])
	require.NoError(t, d.Close(ctx))
	assert.Len(t, obj.methods, 3)
}

func TestDesktopNotifier_NoPopup(t *testing.T) {
	obj := &fakeBusObject{}
	d := &DesktopNotifier{obj: obj, appName: "FocusWarden"}

	require.NoError(t, d.Notify(context.Background(), Alert{Title: "Break Over", Sound: true, NoPopup: true}))
	assert.Empty(t, obj.methods)
}
