// README: Config loader tests.
package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.HTTP.Addr)
	}
	if cfg.Sweep.TickMinutes != 30 {
		t.Errorf("expected default sweep tick 30, got %d", cfg.Sweep.TickMinutes)
	}
	if cfg.Sweep.LicenseWarnHours != 72 {
		t.Errorf("expected default warn window 72, got %d", cfg.Sweep.LicenseWarnHours)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CONVOY_HTTP_ADDR", ":9090")
	t.Setenv("CONVOY_SWEEP_TICK_MIN", "5")
	t.Setenv("CONVOY_LICENSE_WARN_HOURS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("expected addr override, got %s", cfg.HTTP.Addr)
	}
	if cfg.Sweep.TickMinutes != 5 {
		t.Errorf("expected tick override 5, got %d", cfg.Sweep.TickMinutes)
	}
	// unparsable values fall back to the default
	if cfg.Sweep.LicenseWarnHours != 72 {
		t.Errorf("expected fallback 72, got %d", cfg.Sweep.LicenseWarnHours)
	}
}
