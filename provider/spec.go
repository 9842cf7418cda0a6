package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/truemediaorg/mediaresolver/model"
)

type BodyMode string

const (
	BodyModeJSON BodyMode = "json"
	BodyModeForm BodyMode = "form"
	BodyModeNone BodyMode = "none"
)

// Param is one request parameter. String values may use the same placeholders as Endpoint.
type Param struct {
	Name  string `mapstructure:"name"`
	Value any    `mapstructure:"value"`
}

/*
Spec describes one third-party resolver service.

Endpoint is a URL template; the placeholders {url} (query-escaped target URL), {raw_url},
{tiktok_id} and {tweet_id} are substituted per request.
When Origin is set, matching Origin and Referer headers are sent with every request.
Headers are applied last and win over every default.
*/
type Spec struct {
	Name      string            `mapstructure:"name"`
	Endpoint  string            `mapstructure:"endpoint"`
	Method    string            `mapstructure:"method"`
	Body      BodyMode          `mapstructure:"body"`
	Params    []Param           `mapstructure:"params"`
	Headers   map[string]string `mapstructure:"headers"`
	Origin    string            `mapstructure:"origin"`
	Platforms []model.Platform  `mapstructure:"platforms"`
}

func (s Spec) Supports(p model.Platform) bool {
	if p == model.PlatformUnsupported {
		return false
	}
	for _, supported := range s.Platforms {
		if supported == p || supported == model.PlatformUniversal {
			return true
		}
	}
	return false
}

// normalize fills defaults and checks the spec can be executed.
func (s Spec) normalize() (Spec, error) {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return s, errors.New("provider name is required")
	}
	if strings.TrimSpace(s.Endpoint) == "" {
		return s, fmt.Errorf("provider %s: endpoint is required", s.Name)
	}

	s.Method = strings.ToUpper(strings.TrimSpace(s.Method))
	switch s.Method {
	case "":
		s.Method = http.MethodGet
	case http.MethodGet, http.MethodPost:
	default:
		return s, fmt.Errorf("provider %s: unsupported method %s", s.Name, s.Method)
	}

	s.Body = BodyMode(strings.ToLower(string(s.Body)))
	switch s.Body {
	case "":
		s.Body = BodyModeNone
	case BodyModeJSON, BodyModeForm, BodyModeNone:
	default:
		return s, fmt.Errorf("provider %s: unsupported body mode %s", s.Name, s.Body)
	}
	if s.Method == http.MethodGet && s.Body != BodyModeNone {
		return s, fmt.Errorf("provider %s: GET requests cannot carry a %s body", s.Name, s.Body)
	}

	if len(s.Platforms) == 0 {
		return s, fmt.Errorf("provider %s: at least one platform is required", s.Name)
	}
	platforms := make([]model.Platform, 0, len(s.Platforms))
	for _, raw := range s.Platforms {
		p, err := model.ParsePlatform(string(raw))
		if err != nil || p == model.PlatformUnsupported {
			return s, fmt.Errorf("provider %s: invalid platform %q", s.Name, raw)
		}
		platforms = append(platforms, p)
	}
	s.Platforms = platforms

	s.Params = append([]Param(nil), s.Params...)
	headers := make(map[string]string, len(s.Headers))
	for k, v := range s.Headers {
		headers[http.CanonicalHeaderKey(k)] = v
	}
	s.Headers = headers
	s.Origin = strings.TrimSuffix(strings.TrimSpace(s.Origin), "/")
	return s, nil
}
