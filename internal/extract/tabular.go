package extract

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/botweaver/knowledge/internal/domain"
)

// RenderDelimited converts CSV or TSV bytes into one ROW record per data
// line, pairing each value with its header. The first row is the header;
// blank rows are skipped and short rows render missing fields as empty.
func RenderDelimited(data []byte, comma rune) (string, error) {
	if strings.TrimSpace(string(data)) == "" {
		return "", domain.ErrEmptyFile
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to parse delimited file", err)
	}
	if len(records) == 0 {
		return "", domain.ErrEmptyFile
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	var rows []string
	for _, record := range records[1:] {
		if isBlankRow(record) {
			continue
		}
		rows = append(rows, renderRow(header, record))
	}

	if len(rows) == 0 {
		return "", domain.ErrNoDataRows
	}

	return strings.Join(rows, "\n"), nil
}

func renderRow(header, record []string) string {
	var b strings.Builder
	b.WriteString("ROW:")
	for i, name := range header {
		value := ""
		if i < len(record) {
			value = strings.TrimSpace(record[i])
		}
		fmt.Fprintf(&b, " [%s: %s]", name, value)
	}
	return b.String()
}

func isBlankRow(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
