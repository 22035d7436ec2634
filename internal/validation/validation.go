// Package validation checks user supplied values before they reach the
// shell or the generated JavaScript.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrInvalidURL is returned for URLs that cannot be handed to a browser.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrInvalidTagName is returned for names the custom element registry rejects.
	ErrInvalidTagName = errors.New("invalid custom element name")
)

// Characters a shell or URL handler could interpret.
const dangerousURLChars = ";&|`$()<>\"'\\\n\r "

// ValidateURL accepts only absolute http(s) URLs with a host and without
// shell metacharacters, so the result is safe to pass to xdg-open and friends.
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q (only http/https allowed)", ErrInvalidURL, parsed.Scheme)
	}
	if i := strings.IndexAny(rawURL, dangerousURLChars); i >= 0 {
		return fmt.Errorf("%w: contains %q", ErrInvalidURL, rawURL[i])
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

var tagNameRe = regexp.MustCompile(`^[a-z][a-z0-9._]*-[a-z0-9._-]*$`)

// Names reserved by SVG and MathML.
var reservedTagNames = map[string]bool{
	"annotation-xml":   true,
	"color-profile":    true,
	"font-face":        true,
	"font-face-src":    true,
	"font-face-uri":    true,
	"font-face-format": true,
	"font-face-name":   true,
	"missing-glyph":    true,
}

// ValidateTagName reports whether name can be passed to customElements.define.
func ValidateTagName(name string) error {
	switch {
	case !strings.Contains(name, "-"):
		return fmt.Errorf("%w %q: must contain a hyphen", ErrInvalidTagName, name)
	case !tagNameRe.MatchString(name):
		return fmt.Errorf("%w %q: must start with a lowercase letter and use only lowercase letters, digits, '.', '_' and '-'",
			ErrInvalidTagName, name)
	case reservedTagNames[name]:
		return fmt.Errorf("%w %q: reserved name", ErrInvalidTagName, name)
	}
	return nil
}
