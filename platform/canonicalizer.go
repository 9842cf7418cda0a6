package platform

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultCanonicalizeTimeout = 5 * time.Second

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Shortener describes a link-shortening URL shape. PathPrefix is optional.
type Shortener struct {
	Host       string
	PathPrefix string
}

var DefaultShorteners = []Shortener{
	{Host: "vt.tiktok.com"},
	{Host: "vm.tiktok.com"},
	{Host: "tiktok.com", PathPrefix: "/t/"},
	{Host: "fb.watch"},
	{Host: "facebook.com", PathPrefix: "/share/"},
	{Host: "pin.it"},
	{Host: "t.co"},
	{Host: "redd.it"},
	{Host: "lnkd.in"},
	{Host: "dai.ly"},
}

type Canonicalizer struct {
	shorteners []Shortener
	timeout    time.Duration
	HTTPClient *http.Client
}

func NewCanonicalizer(shorteners []Shortener, timeout time.Duration) *Canonicalizer {
	if timeout <= 0 {
		timeout = DefaultCanonicalizeTimeout
	}
	return &Canonicalizer{
		shorteners: append([]Shortener(nil), shorteners...),
		timeout:    timeout,
		HTTPClient: &http.Client{
			// Only one hop is followed, and only by hand
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *Canonicalizer) IsShortened(rawURL string) bool {
	u, err := url.Parse(withScheme(rawURL))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	for _, s := range c.shorteners {
		if host != s.Host && host != "www."+s.Host {
			continue
		}
		if s.PathPrefix == "" || strings.HasPrefix(u.Path, s.PathPrefix) {
			return true
		}
	}
	return false
}

/*
Canonicalize expands a shortened link to its redirect target with a single HEAD probe.
It fails open: any problem along the way returns rawURL unchanged.
URLs that are not shortened are returned as-is without any network traffic.
*/
func (c *Canonicalizer) Canonicalize(ctx context.Context, rawURL string) string {
	if !c.IsShortened(rawURL) {
		return rawURL
	}
	logger := log.WithField("url", rawURL)

	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, withScheme(rawURL), nil)
	if err != nil {
		logger.Debugf("unable to build canonicalization request: %v", err)
		return rawURL
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logger.Debugf("canonicalization probe failed: %v", err)
		return rawURL
	}
	defer resp.Body.Close()

	if !isRedirect(resp.StatusCode) {
		logger.WithField("status", resp.StatusCode).Debug("canonicalization probe did not redirect")
		return rawURL
	}
	location := resp.Header.Get("Location")
	if location == "" {
		logger.Debug("redirect without Location header")
		return rawURL
	}
	target, err := req.URL.Parse(location)
	if err != nil {
		logger.Debugf("unable to parse Location header %q: %v", location, err)
		return rawURL
	}
	logger.WithField("resolvedUrl", target.String()).Info("expanded shortened URL")
	return target.String()
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}
