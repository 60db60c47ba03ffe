package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	apperrors "custseg/internal/errors"
)

// Output formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatJSON  = "json"
)

// Options configures an Exporter.
type Options struct {
	Formats   []string
	Encoding  string
	BOMPrefix bool
}

// Exporter writes tables in every configured format.
type Exporter struct {
	formats []string
	bom     bool
	csv     *CSVWriter
	excel   *ExcelWriter
	logger  *slog.Logger
}

// NewExporter creates an exporter. CSV is always written even when absent
// from opts.Formats.
func NewExporter(opts Options, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "exporter")

	formats := []string{FormatCSV}
	for _, f := range opts.Formats {
		if f != FormatCSV && !contains(formats, f) {
			formats = append(formats, f)
		}
	}

	return &Exporter{
		formats: formats,
		bom:     opts.BOMPrefix,
		csv:     NewCSVWriter(opts.Encoding, logger),
		excel:   NewExcelWriter(logger),
		logger:  logger,
	}
}

// Formats returns the formats written by the exporter.
func (e *Exporter) Formats() []string {
	return e.formats
}

// ExportTable writes table into dir once per format and returns the written
// file paths in format order.
func (e *Exporter) ExportTable(ctx context.Context, dir string, table *Table) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var written []string
	for _, format := range e.formats {
		path, err := e.writeFormat(dir, table, format)
		if err != nil {
			e.logger.ErrorContext(ctx, "Export failed",
				slog.String("table", table.Name),
				slog.String("format", format),
				slog.String("error", err.Error()))
			return written, apperrors.NewExportError(fmt.Sprintf("export %s as %s", table.Name, format), err).
				WithContext("path", path)
		}
		written = append(written, path)
	}

	e.logger.InfoContext(ctx, "Table exported",
		slog.String("table", table.Name),
		slog.Int("rows", len(table.Cells)),
		slog.Int("files", len(written)))
	return written, nil
}

func (e *Exporter) writeFormat(dir string, table *Table, format string) (string, error) {
	switch format {
	case FormatCSV:
		path := filepath.Join(dir, table.Name+".csv")
		return path, e.csv.WriteCSV(path, WriteOptions{
			Headers:   table.Headers,
			Records:   table.Records(),
			BOMPrefix: e.bom,
		})
	case FormatExcel:
		path := filepath.Join(dir, table.Name+".xlsx")
		return path, e.excel.WriteTable(path, table)
	case FormatJSON:
		path := filepath.Join(dir, table.Name+".json")
		return path, WriteJSON(e.logger, path, table.Rows())
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
