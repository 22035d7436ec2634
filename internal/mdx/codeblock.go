package mdx

import (
	"fmt"
	"strings"
)

// Language is the language tag of a fenced code block.
type Language string

const (
	LanguageTSX     Language = "tsx"
	LanguageJSX     Language = "jsx"
	LanguageTS      Language = "ts"
	LanguageJS      Language = "js"
	LanguageVue     Language = "vue"
	LanguageSvelte  Language = "svelte"
	LanguageHTML    Language = "html"
	LanguageCSS     Language = "css"
	LanguageJSON    Language = "json"
	LanguageBash    Language = "bash"
	LanguageUnknown Language = "unknown"
)

// BlockMode controls how a code block is presented.
type BlockMode string

const (
	ModeLive     BlockMode = "live"
	ModeEditable BlockMode = "editable"
	ModeSource   BlockMode = "source"
	ModePreview  BlockMode = "preview"
)

// LanguageFromInfo derives the language from the first token of a fence info
// string, case-insensitively.
func LanguageFromInfo(info string) Language {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return LanguageUnknown
	}

	switch strings.ToLower(fields[0]) {
	case "tsx":
		return LanguageTSX
	case "jsx":
		return LanguageJSX
	case "ts", "typescript":
		return LanguageTS
	case "js", "javascript":
		return LanguageJS
	case "vue":
		return LanguageVue
	case "svelte":
		return LanguageSvelte
	case "html":
		return LanguageHTML
	case "css":
		return LanguageCSS
	case "json":
		return LanguageJSON
	case "bash", "sh", "shell":
		return LanguageBash
	default:
		return LanguageUnknown
	}
}

// ModeFromInfo searches the whole info string for a mode keyword. The first
// of live, editable, preview that occurs wins; source is the fallback.
func ModeFromInfo(info string) BlockMode {
	lower := strings.ToLower(info)
	switch {
	case strings.Contains(lower, "live"):
		return ModeLive
	case strings.Contains(lower, "editable"):
		return ModeEditable
	case strings.Contains(lower, "preview"):
		return ModePreview
	default:
		return ModeSource
	}
}

// ExtractFilename returns the value of a filename="..." attribute, or of an
// unquoted file=... attribute terminated by whitespace.
func ExtractFilename(info string) string {
	const quoted = `filename="`
	if start := strings.Index(info, quoted); start >= 0 {
		rest := info[start+len(quoted):]
		if end := strings.IndexByte(rest, '"'); end >= 0 {
			return rest[:end]
		}
	}

	const bare = "file="
	if start := strings.Index(info, bare); start >= 0 {
		rest := info[start+len(bare):]
		if end := strings.IndexAny(rest, " \t\r\n"); end >= 0 {
			rest = rest[:end]
		}
		return strings.Trim(rest, `"'`)
	}

	return ""
}

// CodeBlock is a code block found in a document body.
type CodeBlock struct {
	ID         string
	Language   Language
	Mode       BlockMode
	Source     string
	LineNumber int
	Filename   string
	// Info is the raw fence info string; empty for indented blocks.
	Info string
	// Start and End delimit the fence, opening and closing markers included,
	// as byte offsets into Document.Body. Both are zero for indented blocks.
	Start, End int
}

// NewCodeBlock builds a block from its fence info string.
func NewCodeBlock(info, source string, line int) CodeBlock {
	return CodeBlock{
		ID:         BlockID(line),
		Language:   LanguageFromInfo(info),
		Mode:       ModeFromInfo(info),
		Source:     source,
		LineNumber: line,
		Filename:   ExtractFilename(info),
		Info:       info,
	}
}

// BlockID derives the stable identifier for a block starting at line.
func BlockID(line int) string {
	return fmt.Sprintf("block-%d", line)
}

// IsLive reports whether the block should render as an interactive preview.
func (b CodeBlock) IsLive() bool {
	return b.Mode == ModeLive && (b.Language == LanguageTSX || b.Language == LanguageJSX)
}
