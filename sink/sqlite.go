package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arloliu/segsieve"
	"github.com/arloliu/segsieve/internal/logging"
	"github.com/arloliu/segsieve/types"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// DefaultBatchSize is how many primes go into one INSERT statement. Each
// row binds two parameters, which keeps a statement under SQLite's
// historical limit of 999 variables.
const DefaultBatchSize = 450

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	upper_limit INTEGER NOT NULL,
	workers     INTEGER NOT NULL,
	window_size INTEGER NOT NULL,
	prime_count INTEGER NOT NULL,
	digest      TEXT    NOT NULL,
	elapsed_sec REAL    NOT NULL,
	created_at  TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS primes (
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	p      INTEGER NOT NULL,
	PRIMARY KEY (run_id, p)
) WITHOUT ROWID;
`

// Run is one stored run.
type Run struct {
	ID         int64
	Limit      uint32
	Workers    int
	WindowSize uint32
	Count      int
	Digest     uint64
	Elapsed    time.Duration
	CreatedAt  time.Time
}

// SQLiteOption configures a SQLite sink.
type SQLiteOption func(*SQLite)

// WithBatchSize sets how many primes go into one INSERT statement.
func WithBatchSize(n int) SQLiteOption {
	return func(s *SQLite) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger types.Logger) SQLiteOption {
	return func(s *SQLite) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// SQLite stores results in a SQLite database.
//
// Every Write adds one row to runs and one row per prime to primes, all in
// a single transaction.
type SQLite struct {
	db        *sql.DB
	batchSize int
	logger    types.Logger
}

var _ Sink = (*SQLite)(nil)

// OpenSQLite opens or creates the database at path and ensures the schema.
//
// Parameters:
//   - ctx: Context for schema setup
//   - path: Database file path (":memory:" works for tests)
//   - opts: Optional configuration
//
// Returns:
//   - *SQLite: Ready sink; Close it when done
//   - error: Open or schema failure
//
// Example:
//
//	db, err := sink.OpenSQLite(ctx, "primes.db")
//	if err != nil { /* handle */ }
//	defer db.Close()
//	err = db.Write(ctx, res)
func OpenSQLite(ctx context.Context, path string, opts ...SQLiteOption) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, batchSize: DefaultBatchSize, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		schema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to prepare database: %w", err)
		}
	}

	return s, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Write implements Sink.
func (s *SQLite) Write(ctx context.Context, res *segsieve.Result) error {
	_, err := s.Insert(ctx, res)
	return err
}

// Insert stores res and returns the new run ID.
//
// Returns:
//   - int64: ID of the stored run
//   - error: ErrNoPrimes for a non-collector result, or a database error
func (s *SQLite) Insert(ctx context.Context, res *segsieve.Result) (int64, error) {
	if res == nil || !res.Collector {
		return 0, ErrNoPrimes
	}

	started := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	out, err := tx.ExecContext(ctx,
		`INSERT INTO runs (upper_limit, workers, window_size, prime_count, digest, elapsed_sec, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.Limit, res.Group.Size, res.WindowSize, len(res.Primes),
		strconv.FormatUint(res.Digest, 16), res.Elapsed.Seconds(),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := out.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	if err := s.insertPrimes(ctx, tx, runID, res.Primes); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("stored sieve result",
		"runID", runID,
		"primes", len(res.Primes),
		"elapsed", time.Since(started),
	)

	return runID, nil
}

// insertPrimes inserts primes in multi-row statements of batchSize rows.
func (s *SQLite) insertPrimes(ctx context.Context, tx *sql.Tx, runID int64, primes []uint32) error {
	var full *sql.Stmt
	defer func() {
		if full != nil {
			_ = full.Close()
		}
	}()

	args := make([]any, 0, 2*s.batchSize)
	for start := 0; start < len(primes); start += s.batchSize {
		batch := primes[start:min(start+s.batchSize, len(primes))]

		args = args[:0]
		for _, p := range batch {
			args = append(args, runID, p)
		}

		var err error
		if len(batch) == s.batchSize {
			if full == nil {
				if full, err = tx.PrepareContext(ctx, insertPrimesSQL(s.batchSize)); err != nil {
					return fmt.Errorf("failed to prepare insert: %w", err)
				}
			}
			_, err = full.ExecContext(ctx, args...)
		} else {
			_, err = tx.ExecContext(ctx, insertPrimesSQL(len(batch)), args...)
		}
		if err != nil {
			return fmt.Errorf("failed to insert primes at %d: %w", batch[0], err)
		}
	}

	return nil
}

func insertPrimesSQL(rows int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO primes (run_id, p) VALUES ")
	for i := range rows {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("(?, ?)")
	}

	return b.String()
}

// Runs lists stored runs, newest first.
func (s *SQLite) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, upper_limit, workers, window_size, prime_count, digest, elapsed_sec, created_at
		 FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			digest  string
			elapsed float64
			created string
		)
		if err := rows.Scan(&r.ID, &r.Limit, &r.Workers, &r.WindowSize, &r.Count, &digest, &elapsed, &created); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.Digest, err = strconv.ParseUint(digest, 16, 64); err != nil {
			return nil, fmt.Errorf("run %d has a malformed digest: %w", r.ID, err)
		}
		r.Elapsed = time.Duration(elapsed * float64(time.Second))
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %d has a malformed timestamp: %w", r.ID, err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// Primes returns the stored primes of a run in ascending order.
func (s *SQLite) Primes(ctx context.Context, runID int64) ([]uint32, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT p FROM primes WHERE run_id = ? ORDER BY p", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query primes: %w", err)
	}
	defer rows.Close()

	var primes []uint32
	for rows.Next() {
		var p uint32
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan prime: %w", err)
		}
		primes = append(primes, p)
	}

	return primes, rows.Err()
}
