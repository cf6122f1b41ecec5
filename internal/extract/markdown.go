package extract

import (
	"regexp"
	"strings"
)

var (
	fencedCodeRe  = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\n?(.*?)```")
	inlineCodeRe  = regexp.MustCompile("`([^`]*)`")
	headerRe      = regexp.MustCompile(`(?m)^#{1,6}\s*(.*)$`)
	boldRe        = regexp.MustCompile(`(\*\*|__)(.*?)(\*\*|__)`)
	italicRe      = regexp.MustCompile(`(\*|_)([^*_]+)(\*|_)`)
	imageRe       = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe        = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	excessBlankRe = regexp.MustCompile(`\n{3,}`)
)

// StripMarkdown reduces markdown markup to plain prose. Fenced code blocks
// are kept, prefixed with a [Code] marker; headers, emphasis and links keep
// their text; images are dropped.
func StripMarkdown(md string) string {
	text := md

	text = fencedCodeRe.ReplaceAllString(text, "[Code]\n$1")
	text = inlineCodeRe.ReplaceAllString(text, "$1")
	text = headerRe.ReplaceAllString(text, "$1")
	text = boldRe.ReplaceAllString(text, "$2")
	text = italicRe.ReplaceAllString(text, "$2")
	text = imageRe.ReplaceAllString(text, "")
	text = linkRe.ReplaceAllString(text, "$1")
	text = excessBlankRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
