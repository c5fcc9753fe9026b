package timeouts_test

import (
	"testing"
	"time"

	"github.com/dalemusser/campusvoice/internal/app/system/timeouts"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	defer timeouts.Reset()

	timeouts.Configure(timeouts.Config{Short: 7 * time.Second})

	if got := timeouts.Short(); got != 7*time.Second {
		t.Errorf("Short() = %v, want 7s", got)
	}
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("Medium() = %v, want default", got)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	defer timeouts.Reset()
	t.Setenv("CAMPUSVOICE_TIMEOUT_PING", "500ms")
	t.Setenv("CAMPUSVOICE_TIMEOUT_LONG", "not-a-duration")

	if n := timeouts.ConfigureFromEnv(); n != 1 {
		t.Errorf("ConfigureFromEnv() = %d, want 1", n)
	}
	if got := timeouts.Ping(); got != 500*time.Millisecond {
		t.Errorf("Ping() = %v, want 500ms", got)
	}
	if got := timeouts.Long(); got != timeouts.DefaultLong {
		t.Errorf("Long() = %v, want default", got)
	}
}
