package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	apperrors "custseg/internal/errors"
	"custseg/internal/rfm"
	"custseg/pkg/contracts/domain"
)

const timeLayout = "2006-01-02 15:04:05"

var tablePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// Run is one persisted segmentation run.
type Run struct {
	ID           string
	SourceFile   string
	AnalysisDate time.Time
	Bins         int
	CreatedAt    time.Time
	Customers    []domain.ScoredCustomer
	Summary      []domain.SegmentSummary
}

// Store persists segmentation runs to MySQL, MariaDB or SQLite.
type Store struct {
	db     *sql.DB
	driver string
	prefix string
	logger *slog.Logger
}

// Open connects to dsn and creates the schema when missing. Table names are
// prefixed with prefix, which may only hold letters, digits and underscores.
func Open(ctx context.Context, dsn, prefix string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "storage")

	if !tablePrefixPattern.MatchString(prefix) {
		return nil, apperrors.NewStorageError(fmt.Sprintf("invalid table prefix %q", prefix), nil)
	}

	driver, conn, err := parseDSN(dsn)
	if err != nil {
		return nil, apperrors.NewStorageError("parse dsn", err)
	}
	if driver == DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(conn), 0755); err != nil {
			return nil, apperrors.NewStorageError("create database directory", err)
		}
	}

	db, err := sql.Open(driver, conn)
	if err != nil {
		return nil, apperrors.NewStorageError("open database", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("connect database", err)
	}

	s := &Store{db: db, driver: driver, prefix: prefix, logger: logger}
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.InfoContext(ctx, "Storage opened",
		slog.String("driver", driver),
		slog.String("dsn", redact(dsn)))
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the database/sql driver in use.
func (s *Store) Driver() string {
	return s.driver
}

func (s *Store) table(name string) string {
	return s.prefix + name
}

func (s *Store) createSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			run_id VARCHAR(36) NOT NULL PRIMARY KEY,
			source_file VARCHAR(512) NOT NULL,
			analysis_date VARCHAR(19) NOT NULL,
			bins INTEGER NOT NULL,
			customers INTEGER NOT NULL,
			created_at VARCHAR(19) NOT NULL
		)`, s.table("runs")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			run_id VARCHAR(36) NOT NULL,
			customer_id VARCHAR(64) NOT NULL,
			recency INTEGER NOT NULL,
			frequency INTEGER NOT NULL,
			monetary DOUBLE NOT NULL,
			last_purchase VARCHAR(19) NOT NULL,
			r_score INTEGER NOT NULL,
			f_score INTEGER NOT NULL,
			m_score INTEGER NOT NULL,
			rfm_score VARCHAR(8) NOT NULL,
			segment VARCHAR(32) NOT NULL,
			PRIMARY KEY (run_id, customer_id)
		)`, s.table("customer_segments")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			run_id VARCHAR(36) NOT NULL,
			segment VARCHAR(32) NOT NULL,
			customer_count INTEGER NOT NULL,
			avg_recency DOUBLE NOT NULL,
			avg_frequency DOUBLE NOT NULL,
			avg_monetary DOUBLE NOT NULL,
			total_monetary DOUBLE NOT NULL,
			percentage DOUBLE NOT NULL,
			PRIMARY KEY (run_id, segment)
		)`, s.table("segment_summary")),
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return apperrors.NewStorageError("create schema", err)
		}
	}
	return nil
}

// SaveRun writes the run, its customers and its segment summary in one
// transaction.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (run_id, source_file, analysis_date, bins, customers, created_at) VALUES (?, ?, ?, ?, ?, ?)`, s.table("runs")),
		run.ID, run.SourceFile, run.AnalysisDate.UTC().Format(timeLayout), run.Bins, len(run.Customers),
		run.CreatedAt.UTC().Format(timeLayout),
	); err != nil {
		return apperrors.NewStorageError("insert run", err).WithContext("run_id", run.ID)
	}

	custStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s
		(run_id, customer_id, recency, frequency, monetary, last_purchase, r_score, f_score, m_score, rfm_score, segment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table("customer_segments")))
	if err != nil {
		return apperrors.NewStorageError("prepare customer insert", err)
	}
	defer custStmt.Close()

	for _, c := range run.Customers {
		if _, err := custStmt.ExecContext(ctx,
			run.ID, c.CustomerID, c.Recency, c.Frequency, c.Monetary,
			c.LastPurchase.UTC().Format(timeLayout),
			c.RScore, c.FScore, c.MScore, c.RFMScore, string(c.Segment),
		); err != nil {
			return apperrors.NewStorageError("insert customer", err).WithContext("customer_id", c.CustomerID)
		}
	}

	sumStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s
		(run_id, segment, customer_count, avg_recency, avg_frequency, avg_monetary, total_monetary, percentage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, s.table("segment_summary")))
	if err != nil {
		return apperrors.NewStorageError("prepare summary insert", err)
	}
	defer sumStmt.Close()

	for _, row := range run.Summary {
		if _, err := sumStmt.ExecContext(ctx,
			run.ID, string(row.Segment), row.CustomerCount, row.AvgRecency, row.AvgFrequency,
			row.AvgMonetary, row.TotalMonetary, row.Percentage,
		); err != nil {
			return apperrors.NewStorageError("insert segment summary", err).WithContext("segment", string(row.Segment))
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("commit run", err)
	}

	s.logger.InfoContext(ctx, "Run persisted",
		slog.String("run_id", run.ID),
		slog.Int("customers", len(run.Customers)),
		slog.Int("segments", len(run.Summary)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// LoadCustomers returns the scored customers of a run ordered by customer id.
// The pipeline never reads runs back; this and CountRuns exist for tests and
// for inspecting a sink by hand.
func (s *Store) LoadCustomers(ctx context.Context, runID string) ([]domain.ScoredCustomer, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT
		customer_id, recency, frequency, monetary, last_purchase, r_score, f_score, m_score, rfm_score, segment
		FROM %s WHERE run_id = ?`, s.table("customer_segments")), runID)
	if err != nil {
		return nil, apperrors.NewStorageError("query customers", err)
	}
	defer rows.Close()

	var out []domain.ScoredCustomer
	for rows.Next() {
		var (
			c       domain.ScoredCustomer
			last    string
			segment string
		)
		if err := rows.Scan(&c.CustomerID, &c.Recency, &c.Frequency, &c.Monetary, &last,
			&c.RScore, &c.FScore, &c.MScore, &c.RFMScore, &segment); err != nil {
			return nil, apperrors.NewStorageError("scan customer", err)
		}
		c.LastPurchase, err = time.Parse(timeLayout, last)
		if err != nil {
			return nil, apperrors.NewStorageError("parse last purchase", err)
		}
		c.Segment = domain.Segment(segment)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("iterate customers", err)
	}
	sort.Slice(out, func(i, j int) bool { return rfm.CompareCustomerIDs(out[i].CustomerID, out[j].CustomerID) < 0 })
	return out, nil
}

// CountRuns returns the number of persisted runs.
func (s *Store) CountRuns(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table("runs"))).Scan(&n); err != nil {
		return 0, apperrors.NewStorageError("count runs", err)
	}
	return n, nil
}
