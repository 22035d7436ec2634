package mdx

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

var (
	// ErrUnclosedFrontmatter is returned when a document opens a header block
	// but never closes it.
	ErrUnclosedFrontmatter = errors.New("unclosed frontmatter block: missing closing ---")
	// ErrMalformedFrontmatter is matched by errors.Is for every header that
	// fails YAML parsing.
	ErrMalformedFrontmatter = errors.New("malformed frontmatter")
)

// FrontmatterError carries the YAML parser message for a malformed header.
type FrontmatterError struct {
	Err error
}

func (e *FrontmatterError) Error() string {
	return fmt.Sprintf("invalid YAML in frontmatter: %v", e.Err)
}

func (e *FrontmatterError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedFrontmatter) hold.
func (e *FrontmatterError) Is(target error) bool {
	return target == ErrMalformedFrontmatter
}

// Frontmatter is the structured header of a documentation page.
type Frontmatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Component   string `yaml:"component,omitempty"`
	Order       *int   `yaml:"order,omitempty"`
	Nav         bool   `yaml:"nav"`
	Slug        string `yaml:"slug,omitempty"`
}

// OrderOr returns the page order or fallback when unset.
func (f *Frontmatter) OrderOr(fallback int) int {
	if f == nil || f.Order == nil {
		return fallback
	}
	return *f.Order
}

// Marshal renders the header back into a delimited YAML block.
func (f *Frontmatter) Marshal() (string, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("failed to marshal frontmatter: %w", err)
	}
	return frontmatterDelimiter + "\n" + string(data) + frontmatterDelimiter + "\n", nil
}

// ExtractFrontmatter splits source into its header and body. Documents that
// do not start with a delimiter line are returned untouched with a nil
// header. A delimiter line holds "---" and nothing but trailing whitespace.
func ExtractFrontmatter(source string) (*Frontmatter, string, error) {
	trimmed := strings.TrimLeft(source, " \t\r\n")
	afterOpen, ok := cutDelimiterLine(trimmed)
	if !ok {
		return nil, source, nil
	}

	for offset := 0; ; {
		rest, closed := cutDelimiterLine(afterOpen[offset:])
		if closed {
			header := strings.TrimSpace(afterOpen[:offset])
			body := strings.TrimLeft(rest, " \t\r\n")

			fm := &Frontmatter{Nav: true}
			if err := yaml.Unmarshal([]byte(header), fm); err != nil {
				return nil, "", &FrontmatterError{Err: err}
			}
			return fm, body, nil
		}

		nl := strings.IndexByte(afterOpen[offset:], '\n')
		if nl < 0 {
			return nil, "", ErrUnclosedFrontmatter
		}
		offset += nl + 1
	}
}

// cutDelimiterLine returns what follows s's first line when that line is a
// frontmatter delimiter.
func cutDelimiterLine(s string) (string, bool) {
	rest, ok := strings.CutPrefix(s, frontmatterDelimiter)
	if !ok {
		return "", false
	}
	line, after, _ := strings.Cut(rest, "\n")
	if strings.TrimRight(line, " \t\r") != "" {
		return "", false
	}
	return after, true
}
