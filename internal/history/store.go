// Package history persists evaluation outcomes to Postgres. It backs the
// duplicate-post check (recent fingerprints per seller) and gives operators
// an audit trail of what the engine flagged and rewrote.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/marketguard/listing-sentinel/internal/config"
	"go.uber.org/zap"
)

// Record is one persisted evaluation.
type Record struct {
	ID           int64     `db:"id"`
	SellerID     string    `db:"seller_id"`
	GroupName    string    `db:"group_name"`
	Fingerprint  string    `db:"fingerprint"`
	RiskScore    int       `db:"risk_score"`
	FindingCount int       `db:"finding_count"`
	Allowed      bool      `db:"allowed"`
	CreatedAt    time.Time `db:"created_at"`
}

// Store handles evaluation history persistence.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS evaluations (
	id            BIGSERIAL PRIMARY KEY,
	seller_id     TEXT NOT NULL DEFAULT '',
	group_name    TEXT NOT NULL DEFAULT '',
	fingerprint   TEXT NOT NULL,
	risk_score    INT NOT NULL,
	finding_count INT NOT NULL,
	allowed       BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_evaluations_seller_fingerprint
	ON evaluations (seller_id, fingerprint, created_at);
CREATE INDEX IF NOT EXISTS idx_evaluations_created_at
	ON evaluations (created_at);
`

// NewStore creates an evaluation history store and ensures the schema.
func NewStore(cfg config.HistoryConfig, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	store := &Store{db: db, logger: logger}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize history store: %w", err)
	}

	logger.Info("History store initialized",
		zap.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)

	return store, nil
}

func (s *Store) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	return nil
}

// Insert persists one evaluation and fills in the record's ID and timestamp.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO evaluations (seller_id, group_name, fingerprint, risk_score, finding_count, allowed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	row := s.db.QueryRowxContext(ctx, query,
		rec.SellerID, rec.GroupName, rec.Fingerprint, rec.RiskScore, rec.FindingCount, rec.Allowed)
	if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert evaluation: %w", err)
	}

	return nil
}

// IsRecentDuplicate reports whether the seller already posted a listing
// with this fingerprint inside the window.
func (s *Store) IsRecentDuplicate(ctx context.Context, sellerID, fingerprint string, window time.Duration) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM evaluations
			WHERE seller_id = $1 AND fingerprint = $2 AND created_at > $3
		)`

	cutoff := time.Now().Add(-window)
	if err := s.db.GetContext(ctx, &exists, query, sellerID, fingerprint, cutoff); err != nil {
		return false, fmt.Errorf("failed to check for duplicate: %w", err)
	}

	return exists, nil
}

// Recent returns the seller's most recent evaluations, newest first.
func (s *Store) Recent(ctx context.Context, sellerID string, limit int) ([]Record, error) {
	records := make([]Record, 0, limit)
	query := `
		SELECT id, seller_id, group_name, fingerprint, risk_score, finding_count, allowed, created_at
		FROM evaluations
		WHERE seller_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	if err := s.db.SelectContext(ctx, &records, query, sellerID, limit); err != nil {
		return nil, fmt.Errorf("failed to load recent evaluations: %w", err)
	}

	return records, nil
}

// Scan streams evaluations created at or after since to fn in created_at
// order. Used by the parquet exporter.
func (s *Store) Scan(ctx context.Context, since time.Time, fn func(Record) error) error {
	query := `
		SELECT id, seller_id, group_name, fingerprint, risk_score, finding_count, allowed, created_at
		FROM evaluations
		WHERE created_at >= $1
		ORDER BY created_at`

	rows, err := s.db.QueryxContext(ctx, query, since)
	if err != nil {
		return fmt.Errorf("failed to scan evaluations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec Record
		if err := rows.StructScan(&rec); err != nil {
			return fmt.Errorf("failed to scan evaluation row: %w", err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}

	return rows.Err()
}

// DeleteOlderThan removes evaluations older than age and returns the count.
func (s *Store) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)

	result, err := s.db.ExecContext(ctx, `DELETE FROM evaluations WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old evaluations: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.logger.Info("Old evaluations deleted", zap.Int64("count", deleted))
	}
	return deleted, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// maskDatabaseURL masks credentials in a database URL for logging.
func maskDatabaseURL(url string) string {
	if !strings.Contains(url, "@") {
		return url
	}
	parts := strings.SplitN(url, "@", 2)
	if idx := strings.LastIndex(parts[0], ":"); idx > strings.Index(parts[0], "//")+1 {
		parts[0] = parts[0][:idx+1] + "***"
	}
	return parts[0] + "@" + parts[1]
}
