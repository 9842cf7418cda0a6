package platform

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	tweetURLPattern   = regexp.MustCompile(`^https?://(?:www\.|mobile\.)?(?:twitter|x)\.com/(?P<UserName>\w+)/status/(?P<TweetID>\d+)`)
	tiktokVideoIDPath = regexp.MustCompile(`/video/(\d+)`)
)

func ConstructTweetURL(authorName string, tweetID string) string {
	return fmt.Sprintf("https://twitter.com/%s/status/%s", authorName, tweetID)
}

// Takes in a URL and extracts the UserName and TweetID if it's a Twitter/X URL.
// Return value order is UserName followed by TweetID, followed by error.
func DeconstructTweetURL(tweetURL string) (string, string, error) {
	matches := tweetURLPattern.FindStringSubmatch(tweetURL)
	if matches == nil {
		return "", "", errors.New("not a tweet URL")
	}
	return matches[1], matches[2], nil
}

// TikTokVideoID pulls the numeric id out of a /video/<id> path. Empty if there isn't one,
// which is always the case for shortened links that were not expanded.
func TikTokVideoID(videoURL string) string {
	matches := tiktokVideoIDPath.FindStringSubmatch(videoURL)
	if matches == nil {
		return ""
	}
	return matches[1]
}

// TweetID is DeconstructTweetURL without the error, for template substitution.
func TweetID(tweetURL string) string {
	_, id, err := DeconstructTweetURL(tweetURL)
	if err != nil {
		return ""
	}
	return id
}

// CanonicalTweetURL rewrites x.com and mobile links to the twitter.com form most
// downloaders expect. Anything that is not a tweet link is returned unchanged.
func CanonicalTweetURL(tweetURL string) string {
	userName, id, err := DeconstructTweetURL(tweetURL)
	if err != nil {
		return tweetURL
	}
	return ConstructTweetURL(userName, id)
}
