package events

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of *pgxpool.Pool the catalog needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresCatalog reads events from the eco_events table.
type PostgresCatalog struct {
	db Querier
}

func NewPostgresCatalog(db Querier) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

func (c *PostgresCatalog) ForCity(ctx context.Context, city string) ([]Event, error) {
	rows, err := c.db.Query(ctx, `
		SELECT title, location, weekday, description
		FROM eco_events
		WHERE city = $1
		ORDER BY position, id
	`, city)
	if err != nil {
		return nil, fmt.Errorf("query eco_events: %w", err)
	}

	evts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Event, error) {
		var e Event
		var wd int16
		if err := row.Scan(&e.Title, &e.Location, &wd, &e.Description); err != nil {
			return Event{}, err
		}
		if wd < 0 || wd > 6 {
			return Event{}, fmt.Errorf("event %q has weekday %d", e.Title, wd)
		}
		e.Weekday = time.Weekday(wd)
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan eco_events: %w", err)
	}
	return evts, nil
}
