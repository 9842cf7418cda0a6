package resolver

import (
	"slices"

	"github.com/truemediaorg/mediaresolver/model"
)

var generalHints = []string{
	"Check that the link points at a single post, not a profile or feed",
	"The download services may be temporarily down; try again in a few minutes",
}

var platformHints = map[model.Platform][]string{
	model.PlatformTikTok: {
		"Make sure the video is public and has not been deleted",
		"Try the full video link (https://www.tiktok.com/@user/video/<id>) instead of a vt.tiktok.com short link",
		"Some videos are region locked and cannot be fetched from every location",
	},
	model.PlatformFacebook: {
		"Only public posts and reels can be resolved",
		"Copy the link from the post's Share menu rather than the browser address bar",
	},
	model.PlatformInstagram: {
		"Posts from private accounts cannot be resolved",
		"Stories expire after 24 hours",
	},
	model.PlatformYouTube: {
		"Age-restricted, private and members-only videos cannot be resolved",
		"Live streams can only be resolved after they end",
	},
	model.PlatformTwitter: {
		"Posts from protected accounts cannot be resolved",
		"Make sure the post itself contains a video or GIF, not just a link to one",
	},
	model.PlatformPinterest: {
		"Only video pins can be resolved",
	},
	model.PlatformReddit: {
		"Make sure the post is hosted on Reddit (v.redd.it) and is not from a private or quarantined community",
	},
	model.PlatformUnsupported: {
		"Use a link from one of the supported platforms",
	},
}

// Suggestions returns the troubleshooting hints for a platform, most specific first.
func Suggestions(p model.Platform) []string {
	hints := slices.Clone(platformHints[p])
	if p == model.PlatformUnsupported {
		return hints
	}
	return append(hints, generalHints...)
}
