package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/truemediaorg/mediaresolver/model"
	"github.com/truemediaorg/mediaresolver/platform"
)

const (
	DefaultBudget = 15 * time.Second

	// Upper bound on how much of a provider response is read
	maxResponseBytes = 10 << 20
)

var defaultHeaders = map[string]string{
	"User-Agent":      platform.DefaultUserAgent,
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "en-US,en;q=0.9",
}

// Attempt is the record of one provider call. ErrorKind is empty when the call succeeded.
type Attempt struct {
	Provider     string
	HTTPStatus   int
	Payload      any
	ContentType  string
	ErrorKind    model.ErrorKind
	ErrorMessage string
	Duration     time.Duration
}

func (a Attempt) Failed() bool {
	return a.ErrorKind != ""
}

func (a Attempt) Error() *model.AttemptError {
	if !a.Failed() {
		return nil
	}
	return &model.AttemptError{
		Kind:    a.ErrorKind,
		Status:  a.HTTPStatus,
		Message: a.ErrorMessage,
	}
}

type Executor struct {
	HTTPClient *http.Client
}

func NewExecutor() *Executor {
	return &Executor{
		// Deadlines come from the per-call context
		HTTPClient: &http.Client{},
	}
}

/*
Execute makes exactly one call to the provider, bounded by budget. It never retries and
never returns an error: every problem is recorded on the Attempt.
*/
func (e *Executor) Execute(ctx context.Context, spec Spec, req model.MediaRequest, budget time.Duration) Attempt {
	if budget <= 0 {
		budget = DefaultBudget
	}
	start := time.Now()
	attempt := e.execute(ctx, spec, req, budget)
	attempt.Duration = time.Since(start)

	logger := log.WithField("provider", spec.Name).WithField("duration", attempt.Duration)
	if attempt.Failed() {
		logger.WithField("kind", attempt.ErrorKind).WithField("status", attempt.HTTPStatus).Debugf("provider call failed: %s", attempt.ErrorMessage)
	} else {
		logger.WithField("status", attempt.HTTPStatus).Debug("provider call succeeded")
	}
	return attempt
}

func (e *Executor) execute(ctx context.Context, spec Spec, req model.MediaRequest, budget time.Duration) Attempt {
	attempt := Attempt{Provider: spec.Name}

	callCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	httpReq, err := BuildRequest(callCtx, spec, req)
	if err != nil {
		attempt.ErrorKind = model.ErrorKindRequest
		attempt.ErrorMessage = err.Error()
		return attempt
	}

	resp, err := e.HTTPClient.Do(httpReq)
	if err != nil {
		attempt.ErrorKind = model.ErrorKindNetwork
		attempt.ErrorMessage = networkMessage(err, budget)
		return attempt
	}
	defer resp.Body.Close()

	attempt.HTTPStatus = resp.StatusCode
	attempt.ContentType = resp.Header.Get("Content-Type")

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		attempt.ErrorKind = model.ErrorKindNetwork
		attempt.ErrorMessage = networkMessage(err, budget)
		return attempt
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		attempt.ErrorKind = model.ErrorKindHTTPStatus
		attempt.Payload = decodeLoose(body)
		attempt.ErrorMessage = errorMessage(attempt.Payload, resp.StatusCode)
		return attempt
	}

	if isJSONContentType(attempt.ContentType) {
		var payload any
		if err := json.Unmarshal(body, &payload); err != nil {
			attempt.ErrorKind = model.ErrorKindMalformed
			attempt.ErrorMessage = fmt.Sprintf("response declared as JSON did not parse: %v", err)
			attempt.Payload = string(body)
			return attempt
		}
		attempt.Payload = payload
		return attempt
	}

	// Providers sometimes mislabel JSON as text/html or text/plain
	attempt.Payload = decodeLoose(body)
	return attempt
}

// BuildRequest shapes the HTTP request for a provider: URL template, body mode and headers.
func BuildRequest(ctx context.Context, spec Spec, req model.MediaRequest) (*http.Request, error) {
	replacer := placeholders(req)
	endpoint := replacer.Replace(spec.Endpoint)

	var body io.Reader
	var contentType string
	switch spec.Body {
	case BodyModeJSON:
		fields := make(map[string]any, len(spec.Params))
		for _, p := range spec.Params {
			fields[p.Name] = renderValue(p.Value, replacer)
		}
		encoded, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("error encoding JSON body: %w", err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	case BodyModeForm:
		form := url.Values{}
		for _, p := range spec.Params {
			form.Add(p.Name, fmt.Sprint(renderValue(p.Value, replacer)))
		}
		body = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		if len(spec.Params) > 0 {
			u, err := url.Parse(endpoint)
			if err != nil {
				return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
			}
			q := u.Query()
			for _, p := range spec.Params {
				q.Add(p.Name, fmt.Sprint(renderValue(p.Value, replacer)))
			}
			u.RawQuery = q.Encode()
			endpoint = u.String()
		}
	}

	method := spec.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	for k, v := range defaultHeaders {
		httpReq.Header.Set(k, v)
	}
	if spec.Origin != "" {
		httpReq.Header.Set("Origin", spec.Origin)
		httpReq.Header.Set("Referer", spec.Origin+"/")
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range spec.Headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}

func placeholders(req model.MediaRequest) *strings.Replacer {
	target := req.ResolvedURL
	if target == "" {
		target = req.OriginalURL
	}
	return strings.NewReplacer(
		"{url}", url.QueryEscape(target),
		"{raw_url}", target,
		"{tiktok_id}", platform.TikTokVideoID(target),
		"{tweet_id}", platform.TweetID(target),
		"{tweet_url}", platform.CanonicalTweetURL(target),
	)
}

func renderValue(value any, replacer *strings.Replacer) any {
	if s, ok := value.(string); ok {
		return replacer.Replace(s)
	}
	return value
}

func isJSONContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

// decodeLoose parses body as JSON when it can, and falls back to the raw text.
func decodeLoose(body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return string(body)
	}
	var payload any
	if err := json.Unmarshal(trimmed, &payload); err == nil {
		return payload
	}
	return string(body)
}

// errorMessage digs a human readable message out of an error body.
func errorMessage(payload any, status int) string {
	if obj, ok := payload.(map[string]any); ok {
		for _, key := range []string{"message", "error", "msg", "text"} {
			if s, ok := obj[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return http.StatusText(status)
}

func networkMessage(err error, budget time.Duration) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("timeout of %s exceeded", budget)
	}
	return err.Error()
}
