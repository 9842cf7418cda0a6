package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucsky/cuid"
	"github.com/truemediaorg/mediaresolver/database/db"
	"github.com/truemediaorg/mediaresolver/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS resolution_log (
	id               TEXT PRIMARY KEY,
	original_url     TEXT NOT NULL,
	resolved_url     TEXT NOT NULL,
	platform         TEXT NOT NULL,
	outcome          TEXT NOT NULL,
	provider         TEXT NOT NULL DEFAULT '',
	tested_providers TEXT[] NOT NULL DEFAULT '{}',
	error_kind       TEXT NOT NULL DEFAULT '',
	error_message    TEXT NOT NULL DEFAULT '',
	resolved         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS resolution_log_resolved_idx ON resolution_log (resolved DESC);`

type Database struct {
	connString string
	pool       *pgxpool.Pool
}

func NewDatabase(connString string) *Database {
	return &Database{
		connString: connString,
	}
}

func (d *Database) Connect(ctx context.Context) error {
	var err error
	d.pool, err = pgxpool.New(ctx, d.connString)
	if err != nil {
		return err
	}
	return nil
}

func (d *Database) Disconnect() {
	d.pool.Close()
}

func (d *Database) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Migrate creates the audit log table when it does not exist yet.
func (d *Database) Migrate(ctx context.Context) error {
	_, err := d.pool.Exec(ctx, schema)
	return err
}

func (d *Database) RecordOutcome(ctx context.Context, outcome model.Outcome) error {
	row := model.LogFromOutcome(outcome)
	// don't really care about the result, as long as this succeeds
	_, err := d.pool.Exec(ctx, `
	INSERT INTO resolution_log (id, original_url, resolved_url, platform, outcome, provider, tested_providers, error_kind, error_message, resolved)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		cuid.New(),
		row.OriginalURL,
		row.ResolvedURL,
		row.Platform,
		row.Outcome,
		row.Provider,
		row.TestedProviders,
		row.ErrorKind,
		row.ErrorMessage,
		time.Now().UTC(), // the DB stores timezones and assumes UTC
	)
	if err != nil {
		return err
	}
	return nil
}

// RecentResolutions returns the latest audit log entries, newest first.
func (d *Database) RecentResolutions(ctx context.Context, limit int) ([]model.Resolution, error) {
	var resolutions []model.Resolution
	rows, err := d.pool.Query(ctx, `
	SELECT
		id,
		original_url,
		resolved_url,
		platform,
		outcome,
		provider,
		tested_providers,
		error_kind,
		error_message,
		resolved
	FROM resolution_log
	ORDER BY resolved DESC
	LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}

	raws, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.ResolutionLog])
	if err != nil {
		return nil, err
	}

	for _, raw := range raws {
		resolution, err := model.ResolutionFromLog(raw)
		if err != nil {
			return nil, err
		}
		resolutions = append(resolutions, *resolution)
	}

	return resolutions, nil
}

// ProviderWins counts successful resolutions per provider since the given time.
func (d *Database) ProviderWins(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := d.pool.Query(ctx, `
	SELECT provider, COUNT(*)
	FROM resolution_log
	WHERE provider <> ''
	  AND resolved >= $1
	GROUP BY provider`,
		since.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	wins := map[string]int{}
	for rows.Next() {
		var provider string
		var count int
		if err := rows.Scan(&provider, &count); err != nil {
			return nil, err
		}
		wins[provider] = count
	}
	return wins, rows.Err()
}
