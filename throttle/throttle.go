// Package throttle limits how often a principal or a client address may
// perform an action.
//
// Limits are fixed windows per scope and action:
//
//	apis:
//	  bumpup: {second: 1, day: 1, month: 2}
//	ips:
//	  bumpup: {second: 1, minute: 1, hour: 2, day: 3}
//
// A limit of N admits N requests per window; the next one is rejected with
// TooManyRequests until the window rolls over. A limit of 0 rejects the
// action outright. Actions without limits are not counted.
package throttle

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/friendsofgo/errors"

	"github.com/nrfta/realestates-go"
)

// Scope selects which caller attribute a limit is keyed by.
type Scope string

const (
	// APIs limits are keyed by principal id.
	APIs Scope = "apis"
	// IPs limits are keyed by client address.
	IPs Scope = "ips"
)

// Window is a fixed counting window.
type Window string

const (
	Second Window = "second"
	Minute Window = "minute"
	Hour   Window = "hour"
	Day    Window = "day"
	Month  Window = "month"
)

var windowOrder = map[Window]int{Second: 0, Minute: 1, Hour: 2, Day: 3, Month: 4}

// ttl is how long a window's counter has to live.
func (w Window) ttl() time.Duration {
	switch w {
	case Second:
		return time.Second
	case Minute:
		return time.Minute
	case Hour:
		return time.Hour
	case Day:
		return 24 * time.Hour
	}
	return 31 * 24 * time.Hour
}

// bucket identifies the window instance t falls into.
func (w Window) bucket(t time.Time) int64 {
	t = t.UTC()
	switch w {
	case Second:
		return t.Unix()
	case Minute:
		return t.Unix() / 60
	case Hour:
		return t.Unix() / 3600
	case Day:
		return t.Unix() / 86400
	}
	return int64(t.Year())*12 + int64(t.Month()) - 1
}

// Limits maps action → window → limit.
type Limits map[string]map[Window]int

// Config holds the limits of both scopes.
type Config struct {
	APIs Limits `yaml:"apis"`
	IPs  Limits `yaml:"ips"`
}

// Validate rejects unknown windows and negative limits.
func (c Config) Validate() error {
	for scope, limits := range map[Scope]Limits{APIs: c.APIs, IPs: c.IPs} {
		for action, windows := range limits {
			for w, n := range windows {
				if _, ok := windowOrder[w]; !ok {
					return errors.Errorf("throttle: %s.%s: unknown window %q", scope, action, w)
				}
				if n < 0 {
					return errors.Errorf("throttle: %s.%s.%s: negative limit", scope, action, w)
				}
			}
		}
	}
	return nil
}

// Counter increments fixed window counters.
type Counter interface {
	// Incr increments key and returns the new value. A new key expires
	// after ttl.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Throttle checks requests against Config.
type Throttle struct {
	counter Counter
	config  Config
	now     func() time.Time
}

// Option configures a Throttle.
type Option func(*Throttle)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Throttle) {
		t.now = now
	}
}

// New creates a Throttle over counter.
func New(counter Counter, config Config, opts ...Option) *Throttle {
	t := &Throttle{counter: counter, config: config, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Allow counts one request for action by key in scope. It returns a
// TooManyRequests error once any window is exhausted.
func (t *Throttle) Allow(ctx context.Context, scope Scope, action, key string) error {
	limits := t.config.APIs
	if scope == IPs {
		limits = t.config.IPs
	}
	windows, ok := limits[action]
	if !ok || key == "" {
		return nil
	}

	now := t.now()
	for _, w := range sortedWindows(windows) {
		limit := windows[w]
		counterKey := fmt.Sprintf("throttle:%s:%s:%s:%s:%d", scope, action, key, w, w.bucket(now))
		n, err := t.counter.Incr(ctx, counterKey, w.ttl())
		if err != nil {
			return errors.Wrapf(err, "throttle: count %s", counterKey)
		}
		if n > int64(limit) {
			return realestates.TooManyRequests("too many %s requests per %s", action, w)
		}
	}
	return nil
}

func sortedWindows(windows map[Window]int) []Window {
	out := make([]Window, 0, len(windows))
	for w := range windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return windowOrder[out[i]] < windowOrder[out[j]] })
	return out
}
