package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spaolacci/murmur3"
	_ "modernc.org/sqlite"

	benchErrors "github.com/arkilian/readbench/internal/errors"
)

// sqlEngine drives a database/sql SQLite driver. The two supported drivers
// differ only in registered name and DSN syntax.
type sqlEngine struct {
	name        string
	driver      string
	readOnlyDSN func(path string) string
	writeDSN    func(path string) string
}

func newMattnEngine(opts Options) *sqlEngine {
	busy := ""
	if opts.BusyTimeout > 0 {
		busy = fmt.Sprintf("&_busy_timeout=%d", opts.BusyTimeout.Milliseconds())
	}
	return &sqlEngine{
		name:   "sqlite3",
		driver: "sqlite3",
		readOnlyDSN: func(path string) string {
			// Open in read-only mode with query-only pragma
			return fileURI(path, "mode=ro&_query_only=true"+busy)
		},
		writeDSN: func(path string) string {
			return fileURI(path, "mode=rwc"+busy)
		},
	}
}

func newModerncEngine(opts Options) *sqlEngine {
	busy := ""
	if opts.BusyTimeout > 0 {
		busy = fmt.Sprintf("&_pragma=busy_timeout(%d)", opts.BusyTimeout.Milliseconds())
	}
	return &sqlEngine{
		name:   "sqlite",
		driver: "sqlite",
		readOnlyDSN: func(path string) string {
			return fileURI(path, "mode=ro&_pragma=query_only(1)"+busy)
		},
		writeDSN: func(path string) string {
			return fileURI(path, "mode=rwc"+busy)
		},
	}
}

// uriPathEscaper encodes the characters SQLite's URI parser would treat as
// delimiters or escapes inside the path component.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// fileURI builds a SQLite file: URI whose path names exactly path.
func fileURI(path, query string) string {
	return "file:" + uriPathEscaper.Replace(path) + "?" + query
}

// Name returns the engine name.
func (e *sqlEngine) Name() string {
	return e.name
}

// PrepareDataset recreates the sample table inside one transaction.
func (e *sqlEngine) PrepareDataset(ctx context.Context, path string) error {
	db, err := e.open(ctx, e.writeDSN(path))
	if err != nil {
		return benchErrors.NewSetupError(benchErrors.CodeOpenFailed,
			fmt.Sprintf("failed to open %s", path), err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return benchErrors.NewSetupError(benchErrors.CodeSchemaFailed, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+SampleTable); err != nil {
		return benchErrors.NewSetupError(benchErrors.CodeSchemaFailed, "failed to drop sample table", err)
	}
	if _, err := tx.ExecContext(ctx, "CREATE TABLE "+SampleTable+" (id INTEGER, value VARCHAR)"); err != nil {
		return benchErrors.NewSetupError(benchErrors.CodeSchemaFailed, "failed to create sample table", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+SampleTable+" (id, value) VALUES (?, ?)")
	if err != nil {
		return benchErrors.NewSetupError(benchErrors.CodeSeedFailed, "failed to prepare insert", err)
	}
	defer stmt.Close()

	for _, row := range SampleRows {
		if _, err := stmt.ExecContext(ctx, row.ID, row.Value); err != nil {
			return benchErrors.NewSetupError(benchErrors.CodeSeedFailed,
				fmt.Sprintf("failed to insert row %d", row.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return benchErrors.NewSetupError(benchErrors.CodeSeedFailed, "failed to commit sample rows", err)
	}
	return nil
}

// AttemptQuery opens a dedicated read-only handle, scans every row and
// closes the handle.
func (e *sqlEngine) AttemptQuery(ctx context.Context, path string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Failure(benchErrors.NewQueryError(benchErrors.CodeAttemptPanic,
				"attempt panicked", fmt.Errorf("%v", r)).Error())
		}
	}()

	db, err := e.open(ctx, e.readOnlyDSN(path))
	if err != nil {
		return Failure(benchErrors.NewQueryError(benchErrors.CodeConnectFailed,
			"failed to open read-only connection", err).Error())
	}
	defer db.Close()

	if _, err := scanSample(ctx, db, "SELECT * FROM "+SampleTable); err != nil {
		return Failure(benchErrors.NewQueryError(benchErrors.CodeScanFailed,
			"failed to scan sample table", err).Error())
	}
	return Success()
}

// Checksum hashes the sample table contents in id order.
func (e *sqlEngine) Checksum(ctx context.Context, path string) (uint32, int, error) {
	db, err := e.open(ctx, e.readOnlyDSN(path))
	if err != nil {
		return 0, 0, benchErrors.NewSetupError(benchErrors.CodeVerifyFailed,
			fmt.Sprintf("failed to open %s", path), err)
	}
	defer db.Close()

	rows, err := scanSample(ctx, db, "SELECT id, value FROM "+SampleTable+" ORDER BY id")
	if err != nil {
		return 0, 0, benchErrors.NewSetupError(benchErrors.CodeVerifyFailed, "failed to scan sample table", err)
	}
	return ChecksumRows(rows), len(rows), nil
}

// ChecksumRows returns the murmur3 hash of rows as Checksum computes it.
func ChecksumRows(rows []SampleRow) uint32 {
	h := murmur3.New32()
	for _, row := range rows {
		fmt.Fprintf(h, "%d:%s\n", row.ID, row.Value)
	}
	return h.Sum32()
}

// open returns a handle limited to one physical connection and verifies the
// connection is usable; sql.Open alone does not touch the file.
func (e *sqlEngine) open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(e.driver, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func scanSample(ctx context.Context, db *sql.DB, query string) ([]SampleRow, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SampleRow
	for rows.Next() {
		var row SampleRow
		if err := rows.Scan(&row.ID, &row.Value); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
