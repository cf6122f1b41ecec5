package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/botweaver/knowledge/internal/domain"
)

// extractWord handles docx and legacy doc documents. DOCX is a zip with the
// body in word/document.xml; anything that fails to open as a zip (old
// binary .doc files) falls back to a printable-rune scan.
func extractWord(data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrEmptyFile
	}

	if text := extractDocxText(data); len(text) > 0 {
		return string(text), nil
	}
	return string(printableText(data)), nil
}

func extractDocxText(data []byte) []byte {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil
	}

	var docFile *zip.File
	for _, f := range r.File {
		if strings.EqualFold(f.Name, "word/document.xml") {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil
	}
	defer rc.Close()

	return wordXMLToText(rc)
}

// wordXMLToText walks the WordprocessingML token stream, collecting text
// runs and mapping paragraph/table boundaries to newlines and tabs.
func wordXMLToText(r io.Reader) []byte {
	dec := xml.NewDecoder(r)
	var buf bytes.Buffer
	var lastWasNewline bool

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t", "instrText":
				var text string
				if err := dec.DecodeElement(&text, &t); err == nil {
					buf.WriteString(text)
					lastWasNewline = false
				}
			case "tab":
				buf.WriteByte('\t')
				lastWasNewline = false
			case "br", "cr":
				buf.WriteByte('\n')
				lastWasNewline = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p", "tr":
				if !lastWasNewline {
					buf.WriteByte('\n')
					lastWasNewline = true
				}
			case "tc":
				if !lastWasNewline {
					buf.WriteByte('\t')
				}
			}
		}
	}

	return buf.Bytes()
}
