package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// ValidateDeckName validates a deck name before it is used for artifact names.
//
// The rules are intentionally simple:
//   - No empty or whitespace-only names
//   - No control characters
//   - Maximum length of 200 characters
func ValidateDeckName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidDeck, "deck name cannot be empty")
	}
	if len(name) > 200 {
		return New(ErrCodeInvalidDeck, "deck name too long (max 200 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDeck, "deck name contains invalid control characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

// ValidateImageRef validates an image reference used as a custom art override.
// Remote references must be http(s) URLs; local references are file:// URLs
// or paths without traversal sequences.
func ValidateImageRef(ref string) error {
	if ref == "" {
		return New(ErrCodeInvalidRef, "image reference cannot be empty")
	}
	for _, r := range ref {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidRef, "image reference contains invalid characters")
		}
	}
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return nil
	case strings.HasPrefix(ref, "asset:"):
		return nil
	case strings.Contains(ref, "://") && !strings.HasPrefix(ref, "file://"):
		return New(ErrCodeInvalidRef, "unsupported image reference scheme: %q", ref)
	}
	if strings.Contains(ref, "..") {
		return New(ErrCodeInvalidRef, "image path cannot contain path traversal sequences (..)")
	}
	return nil
}

// ValidateRemoteImageRef accepts only http(s) image references, for callers
// that take decks from untrusted clients. When hosts is non-empty the URL's
// host must equal one of them or be a subdomain of one.
func ValidateRemoteImageRef(ref string, hosts []string) error {
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return New(ErrCodeInvalidRef, "image reference must be an http(s) URL: %q", ref)
	}
	if len(hosts) == 0 {
		return nil
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range hosts {
		h = strings.ToLower(h)
		if host == h || strings.HasSuffix(host, "."+h) {
			return nil
		}
	}
	return New(ErrCodeInvalidRef, "image host %q is not allowed", host)
}

// setCodeRegex matches catalog set codes ("mh3", "plst", "pw23", "h1r").
var setCodeRegex = regexp.MustCompile(`^[a-z0-9]{2,8}$`)

// ValidateSetCode validates a collection code. Codes are compared lowercased.
func ValidateSetCode(code string) error {
	if code == "" {
		return New(ErrCodeInvalidSet, "set code cannot be empty")
	}
	if !setCodeRegex.MatchString(strings.ToLower(code)) {
		return New(ErrCodeInvalidSet, "invalid set code: %q", code)
	}
	return nil
}
