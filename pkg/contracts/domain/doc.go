// Package domain holds the record types shared by the loader, cleaner,
// RFM calculator, exporters and charts.
package domain
