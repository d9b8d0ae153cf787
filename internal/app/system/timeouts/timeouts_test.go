package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Sweep: 5 * time.Minute})

	got := Current()
	if got.Sweep != 5*time.Minute {
		t.Errorf("Sweep = %v, want 5m", got.Sweep)
	}
	if got.Short != DefaultShort || got.Ping != DefaultPing || got.Medium != DefaultMedium {
		t.Errorf("zero fields changed values: %+v", got)
	}
}

func TestReset(t *testing.T) {
	Configure(Config{Ping: time.Hour, Short: time.Hour, Medium: time.Hour, Sweep: time.Hour})
	Reset()

	want := Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Sweep: DefaultSweep}
	if got := Current(); got != want {
		t.Errorf("Current() = %+v, want %+v", got, want)
	}
}

func TestWithTimeout_LogsOnDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, log, "reconcile sweep")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("got %d log entries, want 1", logs.Len())
	}
	entry := logs.All()[0]
	if entry.Message != "operation timed out" {
		t.Errorf("message = %q", entry.Message)
	}
	if entry.ContextMap()["operation"] != "reconcile sweep" {
		t.Errorf("operation field = %v", entry.ContextMap()["operation"])
	}
}

func TestWithTimeout_QuietOnCancel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	_, cancel := WithTimeout(context.Background(), time.Hour, zap.New(core), "lookup")
	cancel()

	if logs.Len() != 0 {
		t.Errorf("got %d log entries, want 0", logs.Len())
	}
}
