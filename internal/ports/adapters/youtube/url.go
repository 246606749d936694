package youtube

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/forPelevin/splyt/internal/diag"
)

var allowedHosts = map[string]struct{}{
	"youtube.com":     {},
	"www.youtube.com": {},
	"youtu.be":        {},
	"m.youtube.com":   {},
}

var videoIDPattern = regexp.MustCompile(`(/|%3D|v=)([0-9A-Za-z_-]{11})([%#?&]|$)`)

// ExtractVideoID finds the 11 character video identifier in a watch, share
// or embed link.
func ExtractVideoID(raw string) (string, error) {
	m := videoIDPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", diag.New(diag.NoIDInURL)
	}
	return m[2], nil
}

// ValidateURL checks that raw is an absolute link on a known YouTube host
// and returns its video identifier.
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", diag.Wrap(diag.NoURLProtocol, err)
	}
	if _, ok := allowedHosts[strings.ToLower(u.Host)]; !ok {
		return "", diag.New(diag.NotYouTubeURL)
	}
	id, err := ExtractVideoID(raw)
	if err != nil {
		return "", diag.New(diag.NoYouTubeID)
	}
	return id, nil
}
