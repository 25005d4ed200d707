package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// chdir moves into an empty directory so no stray .env is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	// Equivalent of t.Chdir (Go 1.24+) for the Go 1.21 toolchain.
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)
	for _, k := range []string{"LISTEN_ADDR", "PUBLIC_URL", "TRIP_SOURCE", "TRIP_LOAD_TIMEOUT_MS", "NATS_URL", "MAP_ZOOM", "LOG_LEVEL", "CORS_ORIGINS", "MAP_CENTER_LAT", "MAP_CENTER_LNG"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected :8080, got: %q", cfg.ListenAddr)
	}
	if cfg.TripSource != "data/trip_1_cross_country.json" {
		t.Errorf("unexpected trip source: %q", cfg.TripSource)
	}
	if cfg.TripLoadTimeout != 10*time.Second {
		t.Errorf("expected 10s load timeout, got: %v", cfg.TripLoadTimeout)
	}
	if cfg.NATSURL != "" {
		t.Errorf("expected NATS disabled, got: %q", cfg.NATSURL)
	}
	if cfg.MapZoom != 4 || cfg.MapCenterLat != 37.0902 || cfg.MapCenterLng != -95.7129 {
		t.Errorf("unexpected map defaults: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
	if cfg.LogLevel != zerolog.InfoLevel {
		t.Errorf("expected info level, got: %v", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("PUBLIC_URL", "/dash")
	t.Setenv("TRIP_SOURCE", "https://example.com/trip.json")
	t.Setenv("TRIP_LOAD_TIMEOUT_MS", "2500")
	t.Setenv("MAP_ZOOM", "7")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_NATS_SUBJECTS", "yes")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PublicURL != "/dash/" {
		t.Errorf("expected trailing slash, got: %q", cfg.PublicURL)
	}
	if cfg.TripLoadTimeout != 2500*time.Millisecond {
		t.Errorf("expected 2.5s, got: %v", cfg.TripLoadTimeout)
	}
	if cfg.MapZoom != 7 {
		t.Errorf("expected zoom 7, got: %d", cfg.MapZoom)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
	if cfg.LogLevel != zerolog.DebugLevel {
		t.Errorf("expected debug level, got: %v", cfg.LogLevel)
	}
	if !cfg.LogNATSSubjects {
		t.Error("expected NATS subject logging on")
	}
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"TRIP_LOAD_TIMEOUT_MS": "-1",
		"MAP_ZOOM":             "30",
		"MAP_CENTER_LAT":       "91",
		"MAP_CENTER_LNG":       "east",
		"LOG_LEVEL":            "loud",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			chdir(t)
			t.Setenv(k, v)
			if _, err := Load(); err == nil {
				t.Errorf("expected an error for %s=%q", k, v)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := chdir(t)
	t.Setenv("TRIP_ID", "")
	os.Unsetenv("TRIP_ID")

	path := filepath.Join(dir, "extra.env")
	if err := os.WriteFile(path, []byte("TRIP_ID=trip-42\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TripID != "trip-42" {
		t.Errorf("expected TRIP_ID from env file, got: %q", cfg.TripID)
	}

	if _, err := Load(filepath.Join(dir, "missing.env")); err == nil {
		t.Error("expected an error for a missing env file")
	}
}
