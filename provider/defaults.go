package provider

import (
	"net/http"

	"github.com/truemediaorg/mediaresolver/model"
)

// DefaultSpecs is the built-in master list. Broad aggregators come first; platform
// specialists sit ahead of the generic catch-all at the end.
func DefaultSpecs() []Spec {
	return []Spec{
		{
			Name:     "Cobalt",
			Endpoint: "https://api.cobalt.tools/api/json",
			Method:   http.MethodPost,
			Body:     BodyModeJSON,
			Params: []Param{
				{Name: "url", Value: "{raw_url}"},
				{Name: "vCodec", Value: "h264"},
				{Name: "vQuality", Value: "720"},
				{Name: "aFormat", Value: "mp3"},
				{Name: "isAudioOnly", Value: false},
			},
			Headers:   map[string]string{"Accept": "application/json"},
			Platforms: []model.Platform{model.PlatformUniversal},
		},
		{
			Name:      "TiklyDown",
			Endpoint:  "https://api.tiklydown.eu.org/api/download?url={url}",
			Method:    http.MethodGet,
			Body:      BodyModeNone,
			Platforms: []model.Platform{model.PlatformTikTok},
		},
		{
			Name:     "TikTok Official",
			Endpoint: "https://api16-normal-c-useast1a.tiktokv.com/aweme/v1/feed/?aweme_id={tiktok_id}",
			Method:   http.MethodGet,
			Body:     BodyModeNone,
			Headers: map[string]string{
				"User-Agent": "com.ss.android.ugc.trill/494+TikTok+27.7.3+user_agent_hash",
			},
			Platforms: []model.Platform{model.PlatformTikTok},
		},
		{
			Name:     "SnapSave",
			Endpoint: "https://snapsave.app/action.php?lang=en",
			Method:   http.MethodPost,
			Body:     BodyModeForm,
			Params: []Param{
				{Name: "url", Value: "{raw_url}"},
			},
			Origin:    "https://snapsave.app",
			Platforms: []model.Platform{model.PlatformFacebook, model.PlatformInstagram},
		},
		{
			Name:     "TikWM",
			Endpoint: "https://www.tikwm.com/api/",
			Method:   http.MethodPost,
			Body:     BodyModeForm,
			Params: []Param{
				{Name: "url", Value: "{raw_url}"},
				{Name: "hd", Value: 1},
			},
			Origin:    "https://www.tikwm.com",
			Platforms: []model.Platform{model.PlatformTikTok},
		},
		{
			Name:     "TwitSave",
			Endpoint: "https://twitsave.com/info",
			Method:   http.MethodGet,
			Body:     BodyModeNone,
			Params: []Param{
				{Name: "url", Value: "{tweet_url}"},
			},
			Platforms: []model.Platform{model.PlatformTwitter},
		},
		{
			Name:      "Noobs API",
			Endpoint:  "https://www.noobs-api.rf.gd/download?url={url}",
			Method:    http.MethodGet,
			Body:      BodyModeNone,
			Platforms: []model.Platform{model.PlatformUniversal},
		},
	}
}
