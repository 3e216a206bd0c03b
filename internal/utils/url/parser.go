package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL performs comprehensive URL validation
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %s", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	return nil
}

// ValidateTemplate checks that template contains placeholder and becomes a
// valid URL once it is filled in.
func ValidateTemplate(template, placeholder string) error {
	if !strings.Contains(template, placeholder) {
		return fmt.Errorf("%q has no %s placeholder", template, placeholder)
	}
	return ValidateURL(strings.ReplaceAll(template, placeholder, "0"))
}

// Host returns the lower-cased host of rawURL, or "" when it has none
func Host(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
