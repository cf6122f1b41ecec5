package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode"

	"github.com/botweaver/knowledge/internal/domain"
	"golang.org/x/net/html"
)

const maxPageBytes = 10 << 20

// blockTags are elements that introduce a line boundary in the extracted
// text.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"header": true, "footer": true, "main": true, "aside": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "table": true, "tr": true,
	"blockquote": true, "pre": true, "form": true, "nav": true,
}

var skippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
}

// fetchPage downloads a web page and reduces it to plain text.
func (s *Service) fetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "invalid source URL", err)
	}
	req.Header.Set("User-Agent", "knowledge-ingest/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to fetch page", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.NewDomainErrorWithCause(
			domain.ErrCodeExtraction,
			fmt.Sprintf("unexpected status %d fetching page", resp.StatusCode),
			nil,
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to read page body", err)
	}

	return HTMLToText(string(body)), nil
}

// HTMLToText strips tags from an HTML document, dropping script/style/
// noscript subtrees, mapping block elements and <br> to line breaks, and
// decoding entities. Whitespace runs collapse to single spaces within a
// line and blank-line runs collapse to one empty line.
func HTMLToText(page string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(page))

	var b strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}

		switch tt {
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if skippedTags[tag] {
				skipDepth++
				continue
			}
			if skipDepth == 0 && (blockTags[tag] || tag == "br") {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if skippedTags[tag] {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if skipDepth == 0 && blockTags[tag] {
				b.WriteByte('\n')
			}
		case html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			if skipDepth == 0 && string(name) == "br" {
				b.WriteByte('\n')
			}
		case html.TextToken:
			if skipDepth == 0 {
				// Text() returns the token with entities already decoded.
				b.Write(tokenizer.Text())
			}
		}
	}

	return collapseWhitespace(b.String())
}

// collapseWhitespace squeezes runs of spaces within each line and runs of
// blank lines across the document.
func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := true

	for _, line := range lines {
		fields := strings.FieldsFunc(line, unicode.IsSpace)
		cleaned := strings.Join(fields, " ")
		if cleaned == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, cleaned)
		blank = false
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
