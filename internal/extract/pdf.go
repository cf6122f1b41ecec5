package extract

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/botweaver/knowledge/internal/domain"
	"github.com/ledongthuc/pdf"
)

// extractPDF pulls plain text out of a PDF. When the file has no text layer
// it falls back to scanning for printable runes, which still yields something
// embeddable for text-heavy scans.
func extractPDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrEmptyFile
	}

	if r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
		if reader, err := r.GetPlainText(); err == nil {
			if out, err := io.ReadAll(reader); err == nil && len(out) > 0 {
				return string(out), nil
			}
		}
	}

	return string(printableText(data)), nil
}

// printableText keeps printable runes and basic whitespace, dropping the
// binary structure around them.
func printableText(in []byte) []byte {
	var out bytes.Buffer
	for len(in) > 0 {
		r, size := utf8.DecodeRune(in)
		if r == utf8.RuneError && size == 1 {
			b := in[0]
			if isPrintableASCII(b) {
				out.WriteByte(b)
			}
			in = in[1:]
			continue
		}
		in = in[size:]
		if isPrintableRune(r) {
			out.WriteRune(r)
		}
	}
	return out.Bytes()
}

func isPrintableASCII(b byte) bool {
	return b == '\n' || b == '\r' || b == '\t' || (b >= 32 && b < 127)
}

func isPrintableRune(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return true
	}
	return r >= 32 && r <= 0x10FFFF && r != 127
}
