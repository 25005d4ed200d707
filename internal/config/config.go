package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	ListenAddr  string
	PublicURL   string
	MetricsAddr string

	TripSource      string
	TripID          string
	TripLoadTimeout time.Duration

	NATSURL           string
	NATSSubjectPrefix string
	LogNATSSubjects   bool

	MapTileURI     string
	MapAttribution string
	MapCenterLat   float64
	MapCenterLng   float64
	MapZoom        int

	CORSOrigins []string
	LogLevel    zerolog.Level
}

// Load reads .env files (missing files are ignored) and the environment.
// Extra env files are loaded before .env so their values win.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load env file %q: %w", f, err)
		}
	}
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.ListenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.PublicURL = getenvDefault("PUBLIC_URL", "/")
	if !strings.HasSuffix(cfg.PublicURL, "/") {
		cfg.PublicURL += "/"
	}

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	cfg.TripSource = getenvDefault("TRIP_SOURCE", "data/trip_1_cross_country.json")
	cfg.TripID = os.Getenv("TRIP_ID")

	if v := os.Getenv("TRIP_LOAD_TIMEOUT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("invalid TRIP_LOAD_TIMEOUT_MS: %q", v)
		}
		cfg.TripLoadTimeout = time.Duration(ms) * time.Millisecond
	} else {
		cfg.TripLoadTimeout = 10 * time.Second
	}

	// Empty NATS_URL disables frame publishing.
	cfg.NATSURL = os.Getenv("NATS_URL")
	cfg.NATSSubjectPrefix = getenvDefault("NATS_SUBJECT_PREFIX", "playback")
	cfg.LogNATSSubjects = parseBool(os.Getenv("LOG_NATS_SUBJECTS"))

	cfg.MapTileURI = getenvDefault("MAP_TILE_URI", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png")
	cfg.MapAttribution = getenvDefault("MAP_ATTRIBUTION", "© OpenStreetMap contributors")

	var err error
	if cfg.MapCenterLat, err = getenvFloat("MAP_CENTER_LAT", 37.0902, -90, 90); err != nil {
		return nil, err
	}
	if cfg.MapCenterLng, err = getenvFloat("MAP_CENTER_LNG", -95.7129, -180, 180); err != nil {
		return nil, err
	}
	if v := os.Getenv("MAP_ZOOM"); v != "" {
		z, err := strconv.Atoi(v)
		if err != nil || z < 0 || z > 22 {
			return nil, fmt.Errorf("invalid MAP_ZOOM: %q", v)
		}
		cfg.MapZoom = z
	} else {
		cfg.MapZoom = 4
	}

	cfg.CORSOrigins = splitList(getenvDefault("CORS_ORIGINS", "*"))

	cfg.LogLevel = zerolog.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(v)))
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %q", v)
		}
		cfg.LogLevel = lvl
	}

	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvFloat(k string, def, min, max float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < min || f > max {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return f, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
