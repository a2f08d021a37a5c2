package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

const normalizationFlags = purell.FlagsSafe | purell.FlagRemoveFragment

// CanonicalURL trims and normalizes a user supplied retailer URL.
// A missing scheme defaults to https; only http and https are accepted.
func CanonicalURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", errors.New("empty url")
	}

	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", rawURL)
	}

	return purell.NormalizeURL(u, normalizationFlags), nil
}

func hostKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "default"
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
