package model

import (
	"time"

	"github.com/truemediaorg/mediaresolver/database/db"
)

// Resolution is one entry of the resolution audit log.
type Resolution struct {
	ID              string
	OriginalURL     string
	ResolvedURL     string
	Platform        Platform
	Outcome         string
	Provider        string
	TestedProviders []string
	LastError       *AttemptError
	Resolved        time.Time
}

func ResolutionFromLog(row db.ResolutionLog) (*Resolution, error) {
	platform, err := ParsePlatform(row.Platform)
	if err != nil {
		return nil, err
	}
	resolution := &Resolution{
		ID:              row.ID,
		OriginalURL:     row.OriginalURL,
		ResolvedURL:     row.ResolvedURL,
		Platform:        platform,
		Outcome:         row.Outcome,
		Provider:        row.Provider,
		TestedProviders: row.TestedProviders,
		Resolved:        row.Resolved,
	}
	if row.ErrorKind != "" {
		resolution.LastError = &AttemptError{Kind: ErrorKind(row.ErrorKind), Message: row.ErrorMessage}
	}
	return resolution, nil
}

// LogFromOutcome flattens an outcome into its audit log row. ID and Resolved are left for the caller.
func LogFromOutcome(outcome Outcome) db.ResolutionLog {
	row := db.ResolutionLog{
		OriginalURL:     outcome.Request.OriginalURL,
		ResolvedURL:     outcome.Request.ResolvedURL,
		Platform:        string(outcome.Request.Platform),
		Outcome:         outcome.Label(),
		TestedProviders: []string{},
	}
	if outcome.Success != nil {
		row.Provider = outcome.Success.Provider
		return row
	}
	if outcome.Failure.TestedProviders != nil {
		row.TestedProviders = outcome.Failure.TestedProviders
	}
	if outcome.Failure.LastError != nil {
		row.ErrorKind = string(outcome.Failure.LastError.Kind)
		row.ErrorMessage = outcome.Failure.LastError.Message
	}
	return row
}
