package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ResolveDefaultTripID returns the lowest trip_id present in trip_samples.
// Used when no TRIP_ID is configured for a database source.
func ResolveDefaultTripID(ctx context.Context, db *sql.DB) (string, error) {
	q := `
SELECT trip_id
FROM trip_samples
ORDER BY trip_id
LIMIT 1`
	var id sql.NullString
	if err := db.QueryRowContext(ctx, q).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("no trips in trip_samples")
		}
		return "", err
	}
	if !id.Valid || id.String == "" {
		return "", fmt.Errorf("empty trip_id in trip_samples")
	}
	return id.String, nil
}
