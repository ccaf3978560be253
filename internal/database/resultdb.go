package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/iprecon/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "iprecon.db"

// ResultDB stores processed batches and their records.
type ResultDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ResultDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the archive inside dbDir.
func Open(dbDir string, opts Options) (*ResultDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ResultDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *ResultDB) Close() error {
	return rdb.db.Close()
}

// Path returns the database file path.
func (rdb *ResultDB) Path() string {
	return rdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (rdb *ResultDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS batches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		total INTEGER NOT NULL,
		success INTEGER NOT NULL,
		failure INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		output_path TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_batches_created ON batches(created_at);

	-- One row per input address; position keeps the input order
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id INTEGER NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		ip TEXT NOT NULL,
		location TEXT,
		active INTEGER NOT NULL,
		open_ports TEXT,
		cloud_provider TEXT,
		errors TEXT,
		UNIQUE(batch_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_records_batch ON records(batch_id);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// Batch describes one archived batch.
type Batch struct {
	// ID is the unique identifier of the batch.
	ID int64

	// CreatedAt is when the batch was archived.
	CreatedAt time.Time

	// Metrics are the batch metrics as computed at run time.
	Metrics model.BatchMetrics

	// OutputPath is the CSV file the batch was written to, if any.
	OutputPath string
}

// SaveBatch stores the batch and its records in a single transaction and
// returns the new batch ID.
func (rdb *ResultDB) SaveBatch(ctx context.Context, records []model.Record, metrics model.BatchMetrics, outputPath string) (int64, error) {
	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
	INSERT INTO batches (created_at, total, success, failure, elapsed_ms, output_path)
	VALUES (?, ?, ?, ?, ?, ?)
	`,
		time.Now().UTC().Format(time.RFC3339Nano),
		metrics.Total,
		metrics.Success,
		metrics.Failure,
		metrics.Elapsed.Milliseconds(),
		outputPath,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save batch: %w", err)
	}

	batchID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get batch ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO records (batch_id, position, ip, location, active, open_ports, cloud_provider, errors)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		errorsJSON, err := json.Marshal(r.Errors)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize errors: %w", err)
		}

		if _, err := stmt.ExecContext(ctx,
			batchID,
			i,
			r.IP,
			r.Location,
			r.Active,
			r.JoinPorts(),
			r.CloudProvider,
			string(errorsJSON),
		); err != nil {
			return 0, fmt.Errorf("failed to save record %s: %w", r.IP, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}
	return batchID, nil
}

// ListBatches returns archived batches, newest first.
// A non-positive limit returns every batch.
func (rdb *ResultDB) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	query := `
	SELECT id, created_at, total, success, failure, elapsed_ms, output_path
	FROM batches
	ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// GetBatch returns the batch with the given ID.
func (rdb *ResultDB) GetBatch(ctx context.Context, id int64) (*Batch, error) {
	row := rdb.db.QueryRowContext(ctx, `
	SELECT id, created_at, total, success, failure, elapsed_ms, output_path
	FROM batches
	WHERE id = ?
	`, id)

	b, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrBatchNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBatchRecords returns the records of a batch in input order.
func (rdb *ResultDB) GetBatchRecords(ctx context.Context, id int64) ([]model.Record, error) {
	if _, err := rdb.GetBatch(ctx, id); err != nil {
		return nil, err
	}

	rows, err := rdb.db.QueryContext(ctx, `
	SELECT ip, location, active, open_ports, cloud_provider, errors
	FROM records
	WHERE batch_id = ?
	ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get batch records: %w", err)
	}
	defer rows.Close()

	records := []model.Record{}
	for rows.Next() {
		var (
			r                         model.Record
			location, ports, provider sql.NullString
			errorsJSON                sql.NullString
		)
		if err := rows.Scan(&r.IP, &location, &r.Active, &ports, &provider, &errorsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		r.Location = location.String
		r.CloudProvider = provider.String
		r.OpenPorts, err = model.ParsePorts(ports.String)
		if err != nil {
			return nil, fmt.Errorf("invalid ports for %s: %w", r.IP, err)
		}
		if s := strings.TrimSpace(errorsJSON.String); s != "" && s != "null" {
			if err := json.Unmarshal([]byte(s), &r.Errors); err != nil {
				return nil, fmt.Errorf("invalid errors for %s: %w", r.IP, err)
			}
		}

		records = append(records, r)
	}
	return records, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanBatch reads one batches row.
func scanBatch(row rowScanner) (Batch, error) {
	var (
		b          Batch
		createdAt  string
		elapsedMS  int64
		outputPath sql.NullString
	)
	if err := row.Scan(
		&b.ID,
		&createdAt,
		&b.Metrics.Total,
		&b.Metrics.Success,
		&b.Metrics.Failure,
		&elapsedMS,
		&outputPath,
	); err != nil {
		return Batch{}, err
	}

	b.CreatedAt = parseTimestamp(createdAt)
	b.Metrics.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	b.OutputPath = outputPath.String
	return b, nil
}

// timestampFormats lists the formats SQLite may return for time values.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
