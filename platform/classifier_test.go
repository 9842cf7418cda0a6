package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/truemediaorg/mediaresolver/model"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		description string
		url         string
		expected    model.Platform
	}{
		{"tiktok video", "https://www.tiktok.com/@user/video/123456789", model.PlatformTikTok},
		{"tiktok short link", "https://vt.tiktok.com/ZSB3dx7rq/", model.PlatformTikTok},
		{"facebook reel", "https://www.facebook.com/reel/476447884956946?mibextid=rS40aB7S9Ucbxw6v", model.PlatformFacebook},
		{"facebook watch link", "https://fb.watch/abc123/", model.PlatformFacebook},
		{"instagram post", "https://www.instagram.com/p/Cxyz/", model.PlatformInstagram},
		{"youtube short link", "https://youtu.be/dQw4w9WgXcQ", model.PlatformYouTube},
		{"youtube mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", model.PlatformYouTube},
		{"x post", "https://x.com/FooBar/status/1234567", model.PlatformTwitter},
		{"twitter post", "https://twitter.com/FooBar/status/1234567", model.PlatformTwitter},
		{"pinterest short link", "https://pin.it/abc", model.PlatformPinterest},
		{"snapchat spotlight", "https://www.snapchat.com/spotlight/abc", model.PlatformSnapchat},
		{"reddit post", "https://www.reddit.com/r/videos/comments/abc/title/", model.PlatformReddit},
		{"linkedin post", "https://www.linkedin.com/posts/someone_activity-1", model.PlatformLinkedIn},
		{"vimeo video", "https://vimeo.com/123456", model.PlatformVimeo},
		{"twitch clip", "https://clips.twitch.tv/SomeClip", model.PlatformTwitch},
		{"dailymotion video", "https://www.dailymotion.com/video/x7", model.PlatformDailymotion},
		{"missing scheme", "www.instagram.com/reel/abc", model.PlatformInstagram},
		{"upper case host", "HTTPS://WWW.TIKTOK.COM/@user/video/1", model.PlatformTikTok},
		{"lookalike host is not x.com", "https://dropbox.com/s/file.mp4", model.PlatformUniversal},
		{"unknown site", "https://example.com/random", model.PlatformUniversal},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Classify(testCase.url, UnknownPlatformAllowUniversal))
		})
	}
}

func TestClassifyUnknownPlatformPolicy(t *testing.T) {
	t.Run("unmatched URLs are universal when allowed", func(t *testing.T) {
		assert.Equal(t, model.PlatformUniversal, Classify("https://example.com/random", UnknownPlatformAllowUniversal))
	})

	t.Run("unmatched URLs are unsupported when rejected", func(t *testing.T) {
		assert.Equal(t, model.PlatformUnsupported, Classify("https://example.com/random", UnknownPlatformReject))
	})

	t.Run("known platforms ignore the policy", func(t *testing.T) {
		assert.Equal(t, model.PlatformVimeo, Classify("https://vimeo.com/1", UnknownPlatformReject))
	})
}

func TestClassifyIsTotalAndDeterministic(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not a url",
		"://",
		"%zz",
		"https://",
		"http://[::1",
		"ftp://vimeo.com/1",
		"https://www.tiktok.com/@user/video/1",
		"\x00\x01",
	}
	valid := map[model.Platform]bool{model.PlatformUniversal: true, model.PlatformUnsupported: true}
	for _, p := range model.SpecificPlatforms() {
		valid[p] = true
	}
	for _, policy := range []UnknownPlatformPolicy{UnknownPlatformAllowUniversal, UnknownPlatformReject} {
		for _, input := range inputs {
			first := Classify(input, policy)
			assert.True(t, valid[first], "unexpected platform %q for %q", first, input)
			assert.Equal(t, first, Classify(input, policy), "classification of %q changed between calls", input)
		}
	}
}

func TestParseUnknownPlatformPolicy(t *testing.T) {
	policy, err := ParseUnknownPlatformPolicy("REJECT")
	assert.NoError(t, err)
	assert.Equal(t, UnknownPlatformReject, policy)

	policy, err = ParseUnknownPlatformPolicy("allow_universal")
	assert.NoError(t, err)
	assert.Equal(t, UnknownPlatformAllowUniversal, policy)

	_, err = ParseUnknownPlatformPolicy("maybe")
	assert.Error(t, err)
}
