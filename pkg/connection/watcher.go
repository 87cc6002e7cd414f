package connection

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrAlreadyRunning is returned by Run when the watcher is already running.
var ErrAlreadyRunning = errors.New("watcher already running")

// DefaultInterval is the time between successful polls.
const DefaultInterval = 30 * time.Second

// State is the watcher state.
type State uint8

const (
	// StateIdle means Run has not been called.
	StateIdle State = iota

	// StateConnected means the last poll reached the server.
	StateConnected

	// StateBackingOff means the last poll failed and a retry is pending.
	StateBackingOff

	// StateStopped means Run has returned.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnected:
		return "CONNECTED"
	case StateBackingOff:
		return "BACKING_OFF"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// PollFunc performs one refresh. A non-nil error means the server could
// not be reached and triggers backoff.
type PollFunc func(ctx context.Context) error

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	// Interval is the delay after a successful poll. Default: DefaultInterval.
	Interval time.Duration

	Backoff BackoffConfig

	// OnStateChange is called on every state transition.
	OnStateChange func(oldState, newState State)

	// OnRetry is called before waiting out a backoff delay.
	OnRetry func(attempt int, delay time.Duration, err error)

	Logger *slog.Logger
}

// Watcher polls periodically and backs off while polls fail.
type Watcher struct {
	poll    PollFunc
	cfg     WatcherConfig
	backoff *Backoff
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	running bool
}

// NewWatcher creates a Watcher.
func NewWatcher(poll PollFunc, cfg WatcherConfig) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		poll:    poll,
		cfg:     cfg,
		backoff: NewBackoff(cfg.Backoff),
		logger:  logger,
	}
}

// State returns the current state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Run polls until ctx is done. The first poll happens immediately.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.setState(StateStopped)
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		err := w.poll(ctx)
		if ctx.Err() != nil {
			return nil
		}

		var delay time.Duration
		if err != nil {
			delay = w.backoff.Next()
			attempt := w.backoff.Attempts()
			w.setState(StateBackingOff)
			w.logger.Warn("poll failed, backing off", "attempt", attempt, "delay", delay, "error", err)
			if w.cfg.OnRetry != nil {
				w.cfg.OnRetry(attempt, delay, err)
			}
		} else {
			if w.backoff.Attempts() > 0 {
				w.logger.Info("server reachable again")
			}
			w.backoff.Reset()
			w.setState(StateConnected)
			delay = w.cfg.Interval
		}
		timer.Reset(delay)
	}
}

func (w *Watcher) setState(s State) {
	w.mu.Lock()
	old := w.state
	w.state = s
	w.mu.Unlock()

	if old != s && w.cfg.OnStateChange != nil {
		w.cfg.OnStateChange(old, s)
	}
}
