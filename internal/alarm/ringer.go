package alarm

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Ringer fires an alert once and, when asked to, keeps repeating it until
// stopped.
type Ringer struct {
	notifier Notifier
	logger   zerolog.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRinger(n Notifier, logger zerolog.Logger) *Ringer {
	return &Ringer{
		notifier: n,
		logger:   logger.With().Str("component", "alarm").Logger(),
	}
}

// Ring notifies immediately. With a positive interval the alert repeats
// until Stop or ctx is done. A previous alarm is stopped first. A Stop that
// lands while the first notification is in flight cancels the repeat.
func (r *Ringer) Ring(ctx context.Context, a Alert, interval time.Duration) {
	r.Stop()
	r.mu.Lock()
	gen := r.gen
	r.mu.Unlock()

	r.notify(ctx, a)
	if interval <= 0 {
		return
	}

	r.mu.Lock()
	if r.gen != gen {
		r.mu.Unlock()
		r.withdraw()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	r.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.notify(ctx, a)
			}
		}
	}()
}

// Stop silences a repeating alarm and waits for it to finish.
func (r *Ringer) Stop() {
	r.mu.Lock()
	r.gen++
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	r.withdraw()
}

func (r *Ringer) withdraw() {
	if c, ok := r.notifier.(interface{ Close(context.Context) error }); ok {
		if err := c.Close(context.Background()); err != nil {
			r.logger.Debug().Err(err).Msg("Failed to withdraw notification")
		}
	}
}

func (r *Ringer) Ringing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Ringer) notify(ctx context.Context, a Alert) {
	if err := r.notifier.Notify(ctx, a); err != nil {
		r.logger.Warn().Err(err).Str("title", a.Title).Msg("Failed to deliver alarm")
	}
}
