package extract

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/botweaver/knowledge/internal/domain"
	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/structure"
	"github.com/xuri/excelize/v2"
)

// extractXlsx renders every sheet of an XLSX workbook as ROW records, the
// first row of each sheet acting as the header.
func extractXlsx(data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrEmptyFile
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to open xlsx workbook", err)
	}
	defer func() { _ = f.Close() }()

	var sheets []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		if rendered := renderSheet(sheet, rows); rendered != "" {
			sheets = append(sheets, rendered)
		}
	}

	if len(sheets) == 0 {
		return "", domain.ErrNoDataRows
	}
	return strings.Join(sheets, "\n\n"), nil
}

// extractXls does the same for legacy binary XLS workbooks.
func extractXls(data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrEmptyFile
	}

	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to open xls workbook", err)
	}

	var sheets []string
	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		xlsRows := sheet.GetRows()
		if len(xlsRows) == 0 {
			continue
		}
		rows := make([][]string, 0, len(xlsRows))
		for _, row := range xlsRows {
			rows = append(rows, xlsRowValues(row.GetCols()))
		}
		if rendered := renderSheet(sheet.GetName(), rows); rendered != "" {
			sheets = append(sheets, rendered)
		}
	}

	if len(sheets) == 0 {
		return "", domain.ErrNoDataRows
	}
	return strings.Join(sheets, "\n\n"), nil
}

// renderSheet formats one sheet as "Sheet: <name>" followed by ROW records
// keyed by the header row. Sheets without data rows render as empty.
func renderSheet(name string, rows [][]string) string {
	if len(rows) < 2 {
		return ""
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	var lines []string
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		lines = append(lines, renderRow(header, row))
	}
	if len(lines) == 0 {
		return ""
	}

	return "Sheet: " + name + "\n" + strings.Join(lines, "\n")
}

func xlsRowValues(cols []structure.CellData) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		val := col.GetString()
		if val == "" {
			if num := col.GetFloat64(); num != 0 {
				val = strconv.FormatFloat(num, 'f', -1, 64)
			} else if in := col.GetInt64(); in != 0 {
				val = strconv.FormatInt(in, 10)
			}
		}
		out = append(out, val)
	}
	return out
}
