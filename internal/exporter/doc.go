// Package exporter writes analysis tables to disk.
//
// A Table holds typed cells for one result set. Exporter writes it as CSV
// (always), and additionally as an Excel workbook or a JSON array when those
// formats are configured. CSV output can be encoded as utf-8, optionally with
// a BOM for Excel, or as latin-1.
//
// Example usage:
//
//	exp := exporter.NewExporter(exporter.Options{Formats: []string{"csv", "excel"}}, logger)
//	files, err := exp.ExportTable(ctx, resultsDir, exporter.RFMTable("rfm_data", values))
package exporter
