package db

import "time"

type ResolutionLog struct {
	ID              string    `db:"id"`
	OriginalURL     string    `db:"original_url"`
	ResolvedURL     string    `db:"resolved_url"`
	Platform        string    `db:"platform"`
	Outcome         string    `db:"outcome"`
	Provider        string    `db:"provider"`
	TestedProviders []string  `db:"tested_providers"`
	ErrorKind       string    `db:"error_kind"`
	ErrorMessage    string    `db:"error_message"`
	Resolved        time.Time `db:"resolved"`
}
