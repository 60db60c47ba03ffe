// Package storage persists segmentation runs through database/sql.
//
// DSNs are URL-style: mysql:// and mariadb:// go to the MySQL driver,
// sqlite:// opens a local SQLite file. Each run is stored in three tables
// (runs, customer_segments, segment_summary) sharing a configurable prefix.
//
// The store is write-only from the pipeline's point of view. LoadCustomers
// and CountRuns read a sink back for tests and manual inspection.
package storage
