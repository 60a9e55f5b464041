package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

var header = []string{"Date", "Sales", "Expenses", "Profit"}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []DayRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Day, money(r.Sales), money(r.Expenses), money(r.Profit)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

const sheetName = "Report"

// XLSX renders rows as a single sheet workbook.
func XLSX(rows []DayRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}
	for i, r := range rows {
		row := i + 2
		values := []any{r.Day, r.Sales, r.Expenses, r.Profit}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if len(rows) > 0 {
		style, err := f.NewStyle(&excelize.Style{NumFmt: 2})
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, "B2", fmt.Sprintf("D%d", len(rows)+1), style); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
