package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/truemediaorg/mediaresolver/model"
)

var tiktokRequest = model.MediaRequest{
	OriginalURL: "https://vt.tiktok.com/XXXXX/",
	ResolvedURL: "https://www.tiktok.com/@user/video/123456789",
	Platform:    model.PlatformTikTok,
}

type capturedRequest struct {
	method string
	path   string
	query  map[string][]string
	header http.Header
	body   string
}

// captureServer records the single request it receives and answers with the given status, content type and body.
func captureServer(t *testing.T, status int, contentType string, body string) (*httptest.Server, <-chan capturedRequest) {
	captured := make(chan capturedRequest, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		captured <- capturedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			header: r.Header.Clone(),
			body:   string(raw),
		}
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func TestBuildRequestAndExecute(t *testing.T) {
	executor := NewExecutor()

	t.Run("sends JSON params with a JSON content type", func(t *testing.T) {
		server, captured := captureServer(t, http.StatusOK, "application/json", `{"status":"stream","url":"https://cdn.example/v.mp4"}`)
		spec := Spec{
			Name:     "Cobalt",
			Endpoint: server.URL + "/api/json",
			Method:   http.MethodPost,
			Body:     BodyModeJSON,
			Params: []Param{
				{Name: "url", Value: "{raw_url}"},
				{Name: "vQuality", Value: "720"},
				{Name: "isAudioOnly", Value: false},
			},
		}

		attempt := executor.Execute(context.Background(), spec, tiktokRequest, time.Second)
		require.False(t, attempt.Failed(), attempt.ErrorMessage)

		req := <-captured
		assert.Equal(t, http.MethodPost, req.method)
		assert.Equal(t, "application/json", req.header.Get("Content-Type"))
		assert.Equal(t, "en-US,en;q=0.9", req.header.Get("Accept-Language"))
		assert.Contains(t, req.header.Get("User-Agent"), "Mozilla/5.0")

		var sent map[string]any
		require.NoError(t, json.Unmarshal([]byte(req.body), &sent))
		assert.Equal(t, map[string]any{
			"url":         tiktokRequest.ResolvedURL,
			"vQuality":    "720",
			"isAudioOnly": false,
		}, sent)

		assert.Equal(t, "Cobalt", attempt.Provider)
		assert.Equal(t, http.StatusOK, attempt.HTTPStatus)
		assert.Equal(t, "application/json", attempt.ContentType)
		assert.Equal(t, map[string]any{"status": "stream", "url": "https://cdn.example/v.mp4"}, attempt.Payload)
		assert.Nil(t, attempt.Error())
	})

	t.Run("sends form params with a matching Origin and Referer", func(t *testing.T) {
		server, captured := captureServer(t, http.StatusOK, "application/json", `{"data":{"play":"x"}}`)
		spec := Spec{
			Name:     "TikWM",
			Endpoint: server.URL + "/api/",
			Method:   http.MethodPost,
			Body:     BodyModeForm,
			Params:   []Param{{Name: "url", Value: "{raw_url}"}, {Name: "hd", Value: 1}},
			Origin:   "https://www.tikwm.com",
		}

		attempt := executor.Execute(context.Background(), spec, tiktokRequest, time.Second)
		require.False(t, attempt.Failed(), attempt.ErrorMessage)

		req := <-captured
		assert.Equal(t, "application/x-www-form-urlencoded", req.header.Get("Content-Type"))
		assert.Equal(t, "https://www.tikwm.com", req.header.Get("Origin"))
		assert.Equal(t, "https://www.tikwm.com/", req.header.Get("Referer"))
		assert.Equal(t, "hd=1&url=https%3A%2F%2Fwww.tiktok.com%2F%40user%2Fvideo%2F123456789", req.body)
	})

	t.Run("appends GET params as a query string", func(t *testing.T) {
		server, captured := captureServer(t, http.StatusOK, "application/json", `{"download_url":"x"}`)
		spec := Spec{
			Name:     "TwitSave",
			Endpoint: server.URL + "/info?lang=en",
			Method:   http.MethodGet,
			Params:   []Param{{Name: "url", Value: "{raw_url}"}},
		}

		executor.Execute(context.Background(), spec, tiktokRequest, time.Second)

		req := <-captured
		assert.Equal(t, http.MethodGet, req.method)
		assert.Equal(t, "/info", req.path)
		assert.Equal(t, []string{"en"}, req.query["lang"])
		assert.Equal(t, []string{tiktokRequest.ResolvedURL}, req.query["url"])
		assert.Empty(t, req.header.Get("Content-Type"))
		assert.Empty(t, req.body)
	})

	t.Run("uses a templated endpoint verbatim and lets provider headers win", func(t *testing.T) {
		server, captured := captureServer(t, http.StatusOK, "application/json", `{"aweme_list":[{}]}`)
		spec := Spec{
			Name:     "TikTok Official",
			Endpoint: server.URL + "/aweme/v1/feed/?aweme_id={tiktok_id}&src={url}",
			Method:   http.MethodGet,
			Headers:  map[string]string{"User-Agent": "com.ss.android.ugc.trill/494"},
		}

		executor.Execute(context.Background(), spec, tiktokRequest, time.Second)

		req := <-captured
		assert.Equal(t, []string{"123456789"}, req.query["aweme_id"])
		assert.Equal(t, []string{tiktokRequest.ResolvedURL}, req.query["src"])
		assert.Equal(t, "com.ss.android.ugc.trill/494", req.header.Get("User-Agent"))
	})

	t.Run("records non-2xx responses with the provider's message", func(t *testing.T) {
		server, _ := captureServer(t, http.StatusInternalServerError, "application/json", `{"message":"upstream exploded"}`)
		spec := Spec{Name: "Broken", Endpoint: server.URL, Method: http.MethodGet}

		attempt := executor.Execute(context.Background(), spec, tiktokRequest, time.Second)
		assert.Equal(t, model.ErrorKindHTTPStatus, attempt.ErrorKind)
		assert.Equal(t, http.StatusInternalServerError, attempt.HTTPStatus)
		assert.Equal(t, "upstream exploded", attempt.ErrorMessage)
		assert.Equal(t, map[string]any{"message": "upstream exploded"}, attempt.Payload)
		assert.Equal(t, &model.AttemptError{Kind: model.ErrorKindHTTPStatus, Status: 500, Message: "upstream exploded"}, attempt.Error())
	})

	t.Run("falls back to the status text when the error body has no message", func(t *testing.T) {
		server, _ := captureServer(t, http.StatusForbidden, "text/html", `<html>nope</html>`)
		spec := Spec{Name: "Blocked", Endpoint: server.URL, Method: http.MethodGet}

		attempt := executor.Execute(context.Background(), spec, tiktokRequest, time.Second)
		assert.Equal(t, model.ErrorKindHTTPStatus, attempt.ErrorKind)
		assert.Equal(t, "Forbidden", attempt.ErrorMessage)
	})

	t.Run("re-parses JSON served with the wrong content type", func(t *testing.T) {
		server, _ := captureServer(t, http.StatusOK, "text/html; charset=utf-8", `  {"video_url":"https://cdn.example/v.mp4"}`)
		spec := Spec{Name: "Mislabeled", Endpoint: server.URL, Method: http.MethodGet}

		attempt := executor.Execute(context.Background(), spec, tiktokRequest, time.Second)
		require.False(t, attempt.Failed())
		assert.Equal(t, map[string]any{"video_url": "https://cdn.example/v.mp4"}, attempt.Payload)
		assert.Equal(t, "text/html; charset=utf-8", attempt.ContentType)
	})

	t.Run("keeps non-JSON text as a string", func(t *testing.T) {
		server, _ := captureServer(t, http.StatusOK, "text/plain", `https://cdn.example/v.mp4`)
		spec := Spec{Name: "Plain", Endpoint: server.URL, Method: http.MethodGet}

		attempt := executor.Execute(context.Background(), spec, tiktokRequest, time.Second)
		require.False(t, attempt.Failed())
		assert.Equal(t, "https://cdn.example/v.mp4", attempt.Payload)
	})

	t.Run("flags declared JSON that does not parse as malformed", func(t *testing.T) {
		server, _ := captureServer(t, http.StatusOK, "application/json", `{"video_url":`)
		spec := Spec{Name: "Truncated", Endpoint: server.URL, Method: http.MethodGet}

		attempt := executor.Execute(context.Background(), spec, tiktokRequest, time.Second)
		assert.Equal(t, model.ErrorKindMalformed, attempt.ErrorKind)
		assert.Equal(t, http.StatusOK, attempt.HTTPStatus)
	})

	t.Run("gives up when the budget runs out", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)
		spec := Spec{Name: "Slow", Endpoint: server.URL, Method: http.MethodGet}

		start := time.Now()
		attempt := executor.Execute(context.Background(), spec, tiktokRequest, 50*time.Millisecond)
		assert.Equal(t, model.ErrorKindNetwork, attempt.ErrorKind)
		assert.Contains(t, attempt.ErrorMessage, "timeout")
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("records transport failures as network errors", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()
		spec := Spec{Name: "Gone", Endpoint: server.URL, Method: http.MethodGet}

		attempt := executor.Execute(context.Background(), spec, tiktokRequest, time.Second)
		assert.Equal(t, model.ErrorKindNetwork, attempt.ErrorKind)
		assert.Zero(t, attempt.HTTPStatus)
	})

	t.Run("records unbuildable requests without calling out", func(t *testing.T) {
		spec := Spec{Name: "Bad", Endpoint: "http://[::1", Method: http.MethodGet}

		attempt := executor.Execute(context.Background(), spec, tiktokRequest, time.Second)
		assert.Equal(t, model.ErrorKindRequest, attempt.ErrorKind)
	})
}

func TestPlaceholdersFallBackToOriginalURL(t *testing.T) {
	req, err := BuildRequest(context.Background(), Spec{
		Name:     "A",
		Endpoint: "https://a.example/?u={url}&id={tweet_id}",
		Method:   http.MethodGet,
		Params:   []Param{{Name: "t", Value: "{tweet_url}"}},
	}, model.MediaRequest{OriginalURL: "https://x.com/FooBar/status/1234567"})
	require.NoError(t, err)
	assert.Equal(t, "https://x.com/FooBar/status/1234567", req.URL.Query().Get("u"))
	assert.Equal(t, "1234567", req.URL.Query().Get("id"))
	assert.Equal(t, "https://twitter.com/FooBar/status/1234567", req.URL.Query().Get("t"))
}
