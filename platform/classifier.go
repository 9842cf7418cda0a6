package platform

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/truemediaorg/mediaresolver/model"
)

// UnknownPlatformPolicy decides what an unrecognized URL classifies as.
type UnknownPlatformPolicy string

const (
	// Unmatched URLs become universal so generic providers still get a chance
	UnknownPlatformAllowUniversal UnknownPlatformPolicy = "allow_universal"
	// Unmatched URLs become unsupported and are rejected before any provider call
	UnknownPlatformReject UnknownPlatformPolicy = "reject"
)

func ParseUnknownPlatformPolicy(raw string) (UnknownPlatformPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(UnknownPlatformAllowUniversal), "allowuniversal", "universal":
		return UnknownPlatformAllowUniversal, nil
	case string(UnknownPlatformReject):
		return UnknownPlatformReject, nil
	default:
		return "", fmt.Errorf("unidentified unknown platform policy: %s", raw)
	}
}

type rule struct {
	platform model.Platform
	hosts    []string
}

// Order matters: the first rule with a matching host wins.
var rules = []rule{
	{model.PlatformTikTok, []string{"tiktok.com", "tiktokv.com"}},
	{model.PlatformFacebook, []string{"facebook.com", "fb.watch", "fb.com"}},
	{model.PlatformInstagram, []string{"instagram.com", "instagr.am"}},
	{model.PlatformYouTube, []string{"youtube.com", "youtu.be", "youtube-nocookie.com"}},
	{model.PlatformTwitter, []string{"twitter.com", "x.com", "t.co"}},
	{model.PlatformPinterest, []string{"pinterest.com", "pin.it"}},
	{model.PlatformSnapchat, []string{"snapchat.com"}},
	{model.PlatformReddit, []string{"reddit.com", "redd.it"}},
	{model.PlatformLinkedIn, []string{"linkedin.com", "lnkd.in"}},
	{model.PlatformVimeo, []string{"vimeo.com"}},
	{model.PlatformTwitch, []string{"twitch.tv"}},
	{model.PlatformDailymotion, []string{"dailymotion.com", "dai.ly"}},
}

// Classify maps a URL onto a platform. It never fails: anything it can't place is
// decided by policy.
func Classify(rawURL string, policy UnknownPlatformPolicy) model.Platform {
	if host := hostOf(rawURL); host != "" {
		for _, r := range rules {
			for _, h := range r.hosts {
				if host == h || strings.HasSuffix(host, "."+h) {
					return r.platform
				}
			}
		}
	}
	if policy == UnknownPlatformReject {
		return model.PlatformUnsupported
	}
	return model.PlatformUniversal
}

// hostOf returns the lower-cased host of rawURL without port, assuming https when no scheme is given.
func hostOf(rawURL string) string {
	trimmed := withScheme(rawURL)
	if trimmed == "" {
		return ""
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
}

// withScheme trims rawURL and prefixes https:// when it has no scheme.
func withScheme(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed != "" && !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	return trimmed
}
