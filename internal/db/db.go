package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"trip-dashboard/internal/trip"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func Ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// FetchTripSamples returns the samples of one trip ordered by sequence.
// Rows with NULL coordinates are kept as samples without a position so the
// sample count matches the table.
func FetchTripSamples(ctx context.Context, db *sql.DB, tripID string) (trip.Trip, error) {
	cols, err := hasColumns(ctx, db, "public", "trip_samples", "recorded_at", "speed")
	if err != nil {
		return nil, fmt.Errorf("introspect trip_samples columns: %w", err)
	}
	recordedAt := "NULL::timestamptz"
	if cols["recorded_at"] {
		recordedAt = "recorded_at"
	}
	speed := "NULL::double precision"
	if cols["speed"] {
		speed = "speed"
	}
	q := fmt.Sprintf(`SELECT seq, lat, lng, %s, %s
             FROM trip_samples WHERE trip_id = $1 ORDER BY seq`, recordedAt, speed)

	rows, err := db.QueryContext(ctx, q, tripID)
	if err != nil {
		return nil, fmt.Errorf("query trip_samples: %w", err)
	}
	defer rows.Close()

	var t trip.Trip
	for rows.Next() {
		var (
			seq      int64
			lat, lng sql.NullFloat64
			ts       sql.NullTime
			spd      sql.NullFloat64
		)
		if err := rows.Scan(&seq, &lat, &lng, &ts, &spd); err != nil {
			return nil, err
		}
		t = append(t, rowSample(seq, lat, lng, ts, spd))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func rowSample(seq int64, lat, lng sql.NullFloat64, ts sql.NullTime, spd sql.NullFloat64) trip.Sample {
	fields := map[string]json.RawMessage{}
	fields["seq"], _ = json.Marshal(seq)
	if ts.Valid {
		fields["timestamp"], _ = json.Marshal(ts.Time.UTC().Format(time.RFC3339Nano))
	}
	if spd.Valid {
		fields["speed"], _ = json.Marshal(spd.Float64)
	}
	if !lat.Valid || !lng.Valid {
		raw, _ := json.Marshal(fields)
		return trip.Sample{Fields: fields, Raw: raw}
	}
	return trip.NewSample(lat.Float64, lng.Float64, fields)
}

// hasColumns returns a map of requested column names to existence for the given table.
func hasColumns(ctx context.Context, db *sql.DB, schema, table string, cols ...string) (map[string]bool, error) {
	res := make(map[string]bool, len(cols))
	if len(cols) == 0 {
		return res, nil
	}
	for _, c := range cols {
		res[c] = false
	}
	q := `SELECT column_name FROM information_schema.columns
          WHERE table_schema = $1 AND table_name = $2 AND column_name = ANY($3)`
	rows, err := db.QueryContext(ctx, q, schema, table, cols)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		res[name] = true
	}
	return res, rows.Err()
}
