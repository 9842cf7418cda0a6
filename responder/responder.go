package responder

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/truemediaorg/mediaresolver/model"
)

const (
	urlRequiredMsg      = "URL is required"
	methodNotAllowedMsg = "Method not allowed"
)

// SuccessResponse is the body of a 200 from POST /api/download.
type SuccessResponse struct {
	Success     bool           `json:"success"`
	URL         string         `json:"url"`
	ResolvedURL string         `json:"resolvedUrl"`
	Platform    model.Platform `json:"platform"`
	APIUsed     string         `json:"apiUsed"`
	ContentType string         `json:"contentType"`
	Data        any            `json:"data"`
	Warning     string         `json:"warning,omitempty"`
}

// FailureResponse is the body returned when no provider produced usable media.
type FailureResponse struct {
	Success            bool                `json:"success"`
	URL                string              `json:"url"`
	ResolvedURL        string              `json:"resolvedUrl"`
	Platform           model.Platform      `json:"platform"`
	Reason             model.FailureReason `json:"reason"`
	Error              string              `json:"error"`
	TestedAPIs         []string            `json:"testedApis"`
	LastError          *model.AttemptError `json:"lastError,omitempty"`
	Suggestions        []string            `json:"suggestions"`
	SupportedPlatforms []model.Platform    `json:"supportedPlatforms,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Encode turns an outcome into its HTTP status code and response body.
func Encode(outcome model.Outcome) (int, any) {
	req := outcome.Request
	if outcome.Success != nil {
		return http.StatusOK, SuccessResponse{
			Success:     true,
			URL:         req.OriginalURL,
			ResolvedURL: req.ResolvedURL,
			Platform:    req.Platform,
			APIUsed:     outcome.Success.Provider,
			ContentType: outcome.Success.ContentType,
			Data:        outcome.Success.Payload,
			Warning:     outcome.Success.Warning,
		}
	}

	failure := outcome.Failure
	tested := failure.TestedProviders
	if tested == nil {
		tested = []string{}
	}
	suggestions := failure.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	return describeFailure(failure.Reason), FailureResponse{
		Success:            false,
		URL:                req.OriginalURL,
		ResolvedURL:        req.ResolvedURL,
		Platform:           failure.Platform,
		Reason:             failure.Reason,
		Error:              failure.Message,
		TestedAPIs:         tested,
		LastError:          failure.LastError,
		Suggestions:        suggestions,
		SupportedPlatforms: failure.SupportedPlatforms,
	}
}

func describeFailure(reason model.FailureReason) int {
	switch reason {
	case model.FailureReasonUnsupportedPlatform:
		return http.StatusUnprocessableEntity
	case model.FailureReasonExhausted:
		return http.StatusBadGateway
	case model.FailureReasonDeadline:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func WriteOutcome(w http.ResponseWriter, outcome model.Outcome) {
	status, body := Encode(outcome)
	WriteJSON(w, status, body)
}

func WriteURLRequired(w http.ResponseWriter) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: urlRequiredMsg})
}

func WriteMethodNotAllowed(w http.ResponseWriter) {
	WriteJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: methodNotAllowedMsg})
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithField("status", status).Errorf("error writing response: %v", err)
	}
}

// Summarize renders a short human-readable report of an outcome, listing the
// common media fields when the payload carries them.
func Summarize(outcome model.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", outcome.Request.OriginalURL)
	if outcome.Request.ResolvedURL != outcome.Request.OriginalURL {
		fmt.Fprintf(&b, "Resolved URL: %s\n", outcome.Request.ResolvedURL)
	}
	fmt.Fprintf(&b, "Platform: %s\n", outcome.Request.Platform)

	if outcome.Failure != nil {
		fmt.Fprintf(&b, "Failed: %s\n", outcome.Failure.Message)
		for _, hint := range outcome.Failure.Suggestions {
			fmt.Fprintf(&b, "- %s\n", hint)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "API Used: %s\n", outcome.Success.Provider)
	fmt.Fprintf(&b, "Content Type: %s\n", outcome.Success.ContentType)
	if outcome.Success.Warning != "" {
		fmt.Fprintf(&b, "Warning: %s\n", outcome.Success.Warning)
	}
	for _, field := range analyzePayload(outcome.Success.Payload) {
		fmt.Fprintf(&b, "- %s: %v\n", field.label, field.value)
	}
	return b.String()
}

type analysisField struct {
	label string
	value any
}

var analysisKeys = []struct {
	key   string
	label string
}{
	{"video_url", "Video URL"},
	{"download_url", "Download URL"},
	{"title", "Title"},
	{"author", "Author"},
	{"duration", "Duration"},
}

// Looks at the top level of the payload and, when present, its "data" object.
func analyzePayload(payload any) []analysisField {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	var fields []analysisField
	for _, candidate := range []map[string]any{obj, nestedObject(obj, "data")} {
		for _, k := range analysisKeys {
			if v, ok := candidate[k.key]; ok && v != nil && v != "" {
				fields = append(fields, analysisField{label: k.label, value: v})
			}
		}
	}
	return fields
}

func nestedObject(obj map[string]any, key string) map[string]any {
	nested, _ := obj[key].(map[string]any)
	return nested
}
