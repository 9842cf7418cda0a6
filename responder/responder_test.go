package responder

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/truemediaorg/mediaresolver/model"
)

var request = model.MediaRequest{
	OriginalURL: "https://vt.tiktok.com/ZSB3dx7rq/",
	ResolvedURL: "https://www.tiktok.com/@user/video/7300000000000000000",
	Platform:    model.PlatformTikTok,
}

func TestDescribeFailure(t *testing.T) {
	testCases := []struct {
		description string
		reason      model.FailureReason
		status      int
	}{
		{"unsupported platforms are unprocessable", model.FailureReasonUnsupportedPlatform, http.StatusUnprocessableEntity},
		{"exhausted providers are a bad gateway", model.FailureReasonExhausted, http.StatusBadGateway},
		{"a passed deadline is a gateway timeout", model.FailureReasonDeadline, http.StatusGatewayTimeout},
		{"anything else is an internal error", model.FailureReason("mystery"), http.StatusInternalServerError},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.Equal(t, testCase.status, describeFailure(testCase.reason))
		})
	}
}

func TestWriteOutcome(t *testing.T) {
	t.Run("writes a success with the provider payload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteOutcome(rec, model.Outcome{
			Request: request,
			Success: &model.Success{
				Provider:    "TikWM",
				Payload:     map[string]any{"data": map[string]any{"play": "https://cdn.example/v.mp4"}},
				ContentType: "application/json; charset=utf-8",
			},
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{
			"success": true,
			"url": "https://vt.tiktok.com/ZSB3dx7rq/",
			"resolvedUrl": "https://www.tiktok.com/@user/video/7300000000000000000",
			"platform": "tiktok",
			"apiUsed": "TikWM",
			"contentType": "application/json; charset=utf-8",
			"data": {"data": {"play": "https://cdn.example/v.mp4"}}
		}`, rec.Body.String())
	})

	t.Run("includes the warning of a soft success", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteOutcome(rec, model.Outcome{
			Request: request,
			Success: &model.Success{Provider: "Noobs API", Payload: "ok", ContentType: "text/plain", Warning: "API responded but data structure may be unexpected"},
		})

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "API responded but data structure may be unexpected", body["warning"])
		assert.Equal(t, "ok", body["data"])
	})

	t.Run("writes an exhausted resolution as a bad gateway", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteOutcome(rec, model.Outcome{
			Request: request,
			Failure: &model.Failure{
				Platform:        model.PlatformTikTok,
				Reason:          model.FailureReasonExhausted,
				TestedProviders: []string{"Cobalt", "TikWM"},
				LastError:       &model.AttemptError{Kind: model.ErrorKindHTTPStatus, Status: 429, Message: "Too Many Requests"},
				Message:         "All 2 API endpoints failed.",
				Suggestions:     []string{"try again"},
			},
		})

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{
			"success": false,
			"url": "https://vt.tiktok.com/ZSB3dx7rq/",
			"resolvedUrl": "https://www.tiktok.com/@user/video/7300000000000000000",
			"platform": "tiktok",
			"reason": "exhausted",
			"error": "All 2 API endpoints failed.",
			"testedApis": ["Cobalt", "TikWM"],
			"lastError": {"kind": "http_status", "status": 429, "message": "Too Many Requests"},
			"suggestions": ["try again"]
		}`, rec.Body.String())
	})

	t.Run("lists supported platforms for an unsupported link", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteOutcome(rec, model.Outcome{
			Request: model.MediaRequest{OriginalURL: "https://example.com", ResolvedURL: "https://example.com", Platform: model.PlatformUnsupported},
			Failure: &model.Failure{
				Platform:           model.PlatformUnsupported,
				Reason:             model.FailureReasonUnsupportedPlatform,
				Message:            "Unsupported platform.",
				SupportedPlatforms: []model.Platform{model.PlatformTikTok, model.PlatformTwitter},
			},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var body FailureResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, []string{}, body.TestedAPIs)
		assert.Equal(t, []string{}, body.Suggestions)
		assert.Nil(t, body.LastError)
		assert.Equal(t, []model.Platform{model.PlatformTikTok, model.PlatformTwitter}, body.SupportedPlatforms)
	})
}

func TestWriteErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteURLRequired(rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"URL is required"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteMethodNotAllowed(rec)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
}

func TestSummarize(t *testing.T) {
	t.Run("lists the common media fields of a success", func(t *testing.T) {
		summary := Summarize(model.Outcome{
			Request: request,
			Success: &model.Success{
				Provider:    "TiklyDown",
				ContentType: "application/json",
				Payload: map[string]any{
					"video_url": "https://cdn.example/top.mp4",
					"title":     "",
					"data": map[string]any{
						"download_url": "https://cdn.example/nested.mp4",
						"author":       "someone",
						"duration":     12.0,
					},
				},
			},
		})

		assert.Contains(t, summary, "Resolved URL: https://www.tiktok.com/@user/video/7300000000000000000\n")
		assert.Contains(t, summary, "API Used: TiklyDown\n")
		assert.Contains(t, summary, "- Video URL: https://cdn.example/top.mp4\n")
		assert.Contains(t, summary, "- Download URL: https://cdn.example/nested.mp4\n")
		assert.Contains(t, summary, "- Author: someone\n")
		assert.Contains(t, summary, "- Duration: 12\n")
		assert.NotContains(t, summary, "Title")
	})

	t.Run("shows the failure message and hints", func(t *testing.T) {
		summary := Summarize(model.Outcome{
			Request: model.MediaRequest{OriginalURL: "https://x.com/a/status/1", ResolvedURL: "https://x.com/a/status/1", Platform: model.PlatformTwitter},
			Failure: &model.Failure{Reason: model.FailureReasonExhausted, Message: "All 1 API endpoints failed.", Suggestions: []string{"Posts from protected accounts cannot be resolved"}},
		})

		assert.NotContains(t, summary, "Resolved URL")
		assert.Contains(t, summary, "Failed: All 1 API endpoints failed.\n")
		assert.Contains(t, summary, "- Posts from protected accounts cannot be resolved\n")
	})

	t.Run("skips the analysis for payloads that are not objects", func(t *testing.T) {
		assert.Nil(t, analyzePayload("https://cdn.example/v.mp4"))
		assert.Nil(t, analyzePayload([]any{"a"}))
	})
}
