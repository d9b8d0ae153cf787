// Package timeouts holds the deadlines applied to store I/O started from
// HTTP handlers and background workers. Roster batches have none.
//
//   - Ping: health checks
//   - Short: single-employee lookups
//   - Medium: list queries (reports, import history)
//   - Sweep: one background reconcile pass
//
// Values start at the defaults below; bootstrap calls Configure once at
// startup with whatever the config layer supplied.
package timeouts

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultSweep  = 2 * time.Minute
)

// Config is one complete set of deadlines. In Configure, zero fields keep
// the current setting.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Sweep  time.Duration
}

func defaults() *Config {
	return &Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Sweep: DefaultSweep}
}

var current atomic.Pointer[Config]

func init() { current.Store(defaults()) }

func Ping() time.Duration   { return current.Load().Ping }
func Short() time.Duration  { return current.Load().Short }
func Medium() time.Duration { return current.Load().Medium }

// Sweep bounds one background reconcile pass.
func Sweep() time.Duration { return current.Load().Sweep }

// Configure applies the non-zero values in cfg.
func Configure(cfg Config) {
	for {
		old := current.Load()
		next := *old
		for _, f := range []struct {
			dst *time.Duration
			v   time.Duration
		}{
			{&next.Ping, cfg.Ping},
			{&next.Short, cfg.Short},
			{&next.Medium, cfg.Medium},
			{&next.Sweep, cfg.Sweep},
		} {
			if f.v > 0 {
				*f.dst = f.v
			}
		}
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Reset restores the defaults. Used by tests.
func Reset() { current.Store(defaults()) }

// Current returns the active values, for startup logging.
func Current() Config { return *current.Load() }

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was what ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Sweep(), w.log, "reconcile sweep")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
