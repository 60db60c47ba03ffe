package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	apperrors "custseg/internal/errors"
	"custseg/pkg/contracts/domain"
)

// Supported input encodings.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

// invoiceDateLayouts are tried in order when parsing InvoiceDate.
var invoiceDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"1/2/2006",
}

// Dataset is a loaded transaction extract.
type Dataset struct {
	Source        string
	Encoding      string
	Columns       []string
	Transactions  []domain.Transaction
	MissingValues map[string]int
}

// Loader reads transaction extracts from CSV or Excel files.
type Loader struct {
	encoding string
	logger   *slog.Logger
}

// NewLoader creates a loader. encoding forces a decoding ("utf-8" or
// "latin-1"); UTF-8 input that fails validation falls back to latin-1.
func NewLoader(encoding string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if encoding == "" {
		encoding = EncodingUTF8
	}
	return &Loader{
		encoding: encoding,
		logger:   logger.With("component", "loader"),
	}
}

// Load reads the file at path. Files with an .xlsx extension are read with
// the workbook reader, everything else as CSV.
func (l *Loader) Load(ctx context.Context, path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(path, err)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s is a directory", path))
	}

	l.logger.InfoContext(ctx, "Loading transaction data",
		slog.String("path", path),
		slog.Int64("size_bytes", info.Size()))

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err := readWorkbookRows(path, l.logger)
		if err != nil {
			return nil, err
		}
		return l.fromRows(ctx, rows, path, EncodingUTF8)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return l.Read(ctx, bytes.NewReader(content), path)
}

// Read parses CSV content from r. source is used in log and error messages.
func (l *Loader) Read(ctx context.Context, r io.Reader, source string) (*Dataset, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	content, encoding, err := l.decode(content)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("decode %s", source), err)
	}
	if encoding != l.encoding {
		l.logger.WarnContext(ctx, "Input is not valid UTF-8, decoded as latin-1",
			slog.String("source", source))
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("parse CSV %s", source), err)
	}

	return l.fromRows(ctx, rows, source, encoding)
}

// decode strips a UTF-8 BOM and converts latin-1 content to UTF-8.
func (l *Loader) decode(content []byte) ([]byte, string, error) {
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	if l.encoding == EncodingUTF8 && utf8.Valid(content) {
		return content, EncodingUTF8, nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		return nil, "", err
	}
	return decoded, EncodingLatin1, nil
}

func (l *Loader) fromRows(ctx context.Context, rows [][]string, source, encoding string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s is empty", source))
	}

	header := make([]string, len(rows[0]))
	for i, col := range rows[0] {
		header[i] = normalizeColumn(col)
	}

	indices, missing := findColumnIndices(header)
	if len(missing) > 0 {
		return nil, apperrors.NewMissingColumnsError(missing)
	}

	ds := &Dataset{
		Source:        source,
		Encoding:      encoding,
		Columns:       header,
		Transactions:  make([]domain.Transaction, 0, len(rows)-1),
		MissingValues: make(map[string]int, len(domain.RequiredColumns)),
	}
	for _, col := range domain.RequiredColumns {
		ds.MissingValues[col] = 0
	}

	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		txn, err := parseTransaction(row, indices, i+2, ds.MissingValues)
		if err != nil {
			return nil, err
		}
		ds.Transactions = append(ds.Transactions, txn)
	}

	l.logger.InfoContext(ctx, "Data loaded",
		slog.String("source", source),
		slog.String("encoding", encoding),
		slog.Int("rows", len(ds.Transactions)),
		slog.Int("columns", len(header)))

	return ds, nil
}

// normalizeColumn trims whitespace, BOM and zero-width characters from a header cell.
func normalizeColumn(col string) string {
	col = strings.TrimSpace(col)
	col = strings.TrimLeft(col, "\u200B\u200C\u200D\u2060\uFEFF")
	return strings.TrimSpace(col)
}

// findColumnIndices maps each required column to its header position and
// reports the required columns that are absent.
func findColumnIndices(header []string) (map[string]int, []string) {
	indices := make(map[string]int, len(domain.RequiredColumns))
	for i, col := range header {
		if _, seen := indices[col]; !seen {
			indices[col] = i
		}
	}

	var missing []string
	for _, col := range domain.RequiredColumns {
		if _, ok := indices[col]; !ok {
			missing = append(missing, col)
		}
	}
	return indices, missing
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func field(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// parseTransaction converts one CSV row. rowNum is the 1-based line number
// including the header.
func parseTransaction(row []string, idx map[string]int, rowNum int, missing map[string]int) (domain.Transaction, error) {
	var txn domain.Transaction

	for _, col := range domain.RequiredColumns {
		if field(row, idx[col]) == "" {
			missing[col]++
		}
	}

	txn.InvoiceNo = field(row, idx[domain.ColInvoiceNo])
	txn.StockCode = field(row, idx[domain.ColStockCode])
	txn.Description = field(row, idx[domain.ColDescription])
	txn.Country = field(row, idx[domain.ColCountry])
	txn.CustomerID = normalizeCustomerID(field(row, idx[domain.ColCustomerID]))

	date, err := ParseInvoiceDate(field(row, idx[domain.ColInvoiceDate]))
	if err != nil {
		return txn, apperrors.NewParsingError(fmt.Sprintf("row %d: invalid %s", rowNum, domain.ColInvoiceDate), err).
			WithContext("row", rowNum)
	}
	txn.InvoiceDate = date

	if raw := field(row, idx[domain.ColQuantity]); raw != "" {
		q, err := strconv.ParseFloat(raw, 64)
		if err != nil || q != math.Trunc(q) {
			return txn, apperrors.NewParsingError(fmt.Sprintf("row %d: invalid %s %q", rowNum, domain.ColQuantity, raw), err).
				WithContext("row", rowNum)
		}
		txn.Quantity = int(q)
	}

	if raw := field(row, idx[domain.ColUnitPrice]); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return txn, apperrors.NewParsingError(fmt.Sprintf("row %d: invalid %s %q", rowNum, domain.ColUnitPrice, raw), err).
				WithContext("row", rowNum)
		}
		txn.UnitPrice = p
	}

	return txn, nil
}

// ParseInvoiceDate parses a timestamp in any of the accepted layouts and
// returns it in UTC.
func ParseInvoiceDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range invoiceDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", raw)
}

// normalizeCustomerID turns float-formatted ids such as "17850.0" into "17850".
func normalizeCustomerID(id string) string {
	if trimmed, ok := strings.CutSuffix(id, ".0"); ok {
		if _, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return trimmed
		}
	}
	return id
}
