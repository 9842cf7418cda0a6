package model

import (
	"fmt"
	"strings"
)

type Platform string

const (
	PlatformTikTok      Platform = "tiktok"
	PlatformFacebook    Platform = "facebook"
	PlatformInstagram   Platform = "instagram"
	PlatformYouTube     Platform = "youtube"
	PlatformTwitter     Platform = "twitter"
	PlatformPinterest   Platform = "pinterest"
	PlatformSnapchat    Platform = "snapchat"
	PlatformReddit      Platform = "reddit"
	PlatformLinkedIn    Platform = "linkedin"
	PlatformVimeo       Platform = "vimeo"
	PlatformTwitch      Platform = "twitch"
	PlatformDailymotion Platform = "dailymotion"

	// Not a recognized site, but generic providers may still try it
	PlatformUniversal Platform = "universal"
	// No provider can serve it
	PlatformUnsupported Platform = "unsupported"
)

var specificPlatforms = []Platform{
	PlatformTikTok,
	PlatformFacebook,
	PlatformInstagram,
	PlatformYouTube,
	PlatformTwitter,
	PlatformPinterest,
	PlatformSnapchat,
	PlatformReddit,
	PlatformLinkedIn,
	PlatformVimeo,
	PlatformTwitch,
	PlatformDailymotion,
}

// SpecificPlatforms returns every concrete platform, excluding the universal and unsupported sentinels.
func SpecificPlatforms() []Platform {
	platforms := make([]Platform, len(specificPlatforms))
	copy(platforms, specificPlatforms)
	return platforms
}

func ParsePlatform(s string) (Platform, error) {
	candidate := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch candidate {
	case PlatformUniversal, PlatformUnsupported:
		return candidate, nil
	}
	for _, p := range specificPlatforms {
		if p == candidate {
			return p, nil
		}
	}
	return PlatformUnsupported, fmt.Errorf("unknown platform: %s", s)
}

func (p Platform) String() string {
	return string(p)
}
