package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"trip-dashboard/internal/db"
	"trip-dashboard/internal/trip"
)

// ErrUnsupportedSource is returned for a source scheme the loader cannot read.
var ErrUnsupportedSource = errors.New("unsupported trip source")

// ErrPayloadTooLarge is returned when a trip document exceeds maxPayloadBytes.
var ErrPayloadTooLarge = errors.New("trip payload too large")

// maxPayloadBytes caps the trip document read over HTTP or from disk.
var maxPayloadBytes = 64 << 20

// LoaderMetrics receives load outcomes. It may be nil.
type LoaderMetrics interface {
	LoadObserve(source string, d time.Duration, err error)
}

// Loader fetches one trip from a configured source.
type Loader struct {
	Source  string
	TripID  string
	Timeout time.Duration
	Client  *http.Client
	Metrics LoaderMetrics
}

// Load fetches the trip once. Any failure is logged and an empty trip is
// returned; the error is returned as well so callers can report it.
func (l *Loader) Load(ctx context.Context) (trip.Trip, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	kind := sourceKind(l.Source)
	start := time.Now()
	t, err := l.fetch(ctx, kind)
	if l.Metrics != nil {
		l.Metrics.LoadObserve(kind, time.Since(start), err)
	}
	if err != nil {
		log.Error().Err(err).Str("source", redact(l.Source)).Msg("error loading trip data")
		return trip.Trip{}, err
	}
	log.Info().Int("events", len(t)).Str("source", redact(l.Source)).Msg("trip data loaded")
	return t, nil
}

func (l *Loader) fetch(ctx context.Context, kind string) (trip.Trip, error) {
	switch kind {
	case "http":
		return l.fetchHTTP(ctx)
	case "file":
		return l.fetchFile()
	case "postgres":
		return l.fetchPostgres(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, l.Source)
	}
}

func (l *Loader) fetchHTTP(ctx context.Context) (trip.Trip, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.Source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trip: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch trip: unexpected status %s", resp.Status)
	}
	body, err := readPayload(resp.Body)
	if err != nil {
		return nil, err
	}
	return trip.Parse(body)
}

func (l *Loader) fetchFile() (trip.Trip, error) {
	path, err := filePath(l.Source)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trip: %w", err)
	}
	defer f.Close()
	body, err := readPayload(f)
	if err != nil {
		return nil, err
	}
	return trip.Parse(body)
}

// filePath maps a file source to a path. file://data/trip.json is relative,
// file:///data/trip.json is absolute, file://localhost/... is absolute.
func filePath(src string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(src), "file://") {
		return src, nil
	}
	u, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse file url: %w", err)
	}
	switch u.Host {
	case "", "localhost":
		if u.Path == "" {
			return "", fmt.Errorf("%w: empty file path in %q", ErrUnsupportedSource, src)
		}
		return u.Path, nil
	default:
		return u.Host + u.Path, nil
	}
}

// readPayload reads at most maxPayloadBytes and fails on anything larger.
func readPayload(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, int64(maxPayloadBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("read trip: %w", err)
	}
	if len(body) > maxPayloadBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrPayloadTooLarge, maxPayloadBytes)
	}
	return body, nil
}

func (l *Loader) fetchPostgres(ctx context.Context) (trip.Trip, error) {
	conn, err := db.Open(l.Source)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	defer conn.Close()
	if err := db.Ping(ctx, conn); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	tripID := l.TripID
	if tripID == "" {
		tripID, err = db.ResolveDefaultTripID(ctx, conn)
		if err != nil {
			return nil, fmt.Errorf("resolve trip: %w", err)
		}
		log.Info().Str("trip", tripID).Msg("no TRIP_ID set, using first trip in database")
	}
	return db.FetchTripSamples(ctx, conn, tripID)
}

func sourceKind(src string) string {
	lower := strings.ToLower(strings.TrimSpace(src))
	switch {
	case lower == "":
		return "none"
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return "http"
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(lower, "file://"), !strings.Contains(lower, "://"):
		return "file"
	default:
		return "unknown"
	}
}

// redact strips credentials from URL-like sources before logging.
func redact(src string) string {
	u, err := url.Parse(src)
	if err != nil || u.User == nil {
		return src
	}
	return u.Redacted()
}
