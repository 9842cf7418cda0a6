package model

// MediaRequest is built once per resolution, after canonicalization and classification.
// It is not modified afterwards.
type MediaRequest struct {
	OriginalURL string
	ResolvedURL string
	Platform    Platform
}
