package dataprocessing

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "custseg/internal/errors"
	"custseg/pkg/contracts/domain"
)

// workbookDateLayout is the layout InvoiceDate serials are rendered in.
const workbookDateLayout = "2006-01-02 15:04:05"

// readWorkbookRows returns the rows of the first sheet whose header row
// carries the InvoiceNo column, falling back to the first sheet. Cells are
// read unformatted; numeric InvoiceDate cells are converted from Excel
// serial dates.
func readWorkbookRows(path string, logger *slog.Logger) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("open workbook %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s has no sheets", path))
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	for _, name := range sheets {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil || len(rows) == 0 {
			continue
		}
		for _, cell := range rows[0] {
			if strings.EqualFold(normalizeColumn(cell), domain.ColInvoiceNo) {
				logger.Debug("Found transaction data in sheet", slog.String("sheet_name", name))
				return convertSerialDates(rows, date1904)
			}
		}
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("read sheet %s", sheets[0]), err)
	}
	return convertSerialDates(rows, date1904)
}

// convertSerialDates rewrites numeric InvoiceDate cells as date text. Cells
// holding date text are left as they are.
func convertSerialDates(rows [][]string, date1904 bool) ([][]string, error) {
	if len(rows) == 0 {
		return rows, nil
	}

	col := -1
	for i, cell := range rows[0] {
		if strings.EqualFold(normalizeColumn(cell), domain.ColInvoiceDate) {
			col = i
			break
		}
	}
	if col < 0 {
		return rows, nil
	}

	for i, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		serial, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			continue
		}
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("row %d: invalid InvoiceDate serial %q", i+2, row[col]), err)
		}
		row[col] = t.Round(time.Second).Format(workbookDateLayout)
	}
	return rows, nil
}
