package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	_ "github.com/lib/pq"

	"github.com/Vodeneev/betcode/internal/pkg/config"
)

// maxRecentConversions caps RecentConversions
const maxRecentConversions = 500

// Ensure PostgresAuditStorage implements AuditStorage
var _ AuditStorage = (*PostgresAuditStorage)(nil)

// PostgresAuditStorage stores conversion metadata in PostgreSQL
type PostgresAuditStorage struct {
	db *sql.DB
}

// NewPostgresAuditStorage opens the database, pings it and creates the table when missing
func NewPostgresAuditStorage(cfg *config.AuditConfig) (*PostgresAuditStorage, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	storage := &PostgresAuditStorage{db: db}
	if err := storage.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL audit storage initialized")
	return storage, nil
}

func (s *PostgresAuditStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS conversion_audit (
		id BIGSERIAL PRIMARY KEY,
		code VARCHAR(100) NOT NULL,
		from_platform VARCHAR(32) NOT NULL,
		to_platform VARCHAR(32) NOT NULL,
		ok BOOLEAN NOT NULL,
		outcome VARCHAR(64) NOT NULL,
		converted_code VARCHAR(16) NOT NULL DEFAULT '',
		legs INTEGER NOT NULL DEFAULT 0,
		duration_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_conversion_audit_created_at ON conversion_audit(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_conversion_audit_code ON conversion_audit(from_platform, code);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *PostgresAuditStorage) RecordConversion(ctx context.Context, rec ConversionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
	INSERT INTO conversion_audit (
		code, from_platform, to_platform, ok, outcome,
		converted_code, legs, duration_ms, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		truncate(rec.Code, 100),
		truncate(rec.FromPlatform, 32),
		truncate(rec.ToPlatform, 32),
		rec.OK,
		rec.Outcome,
		rec.ConvertedCode,
		rec.Legs,
		rec.Duration.Milliseconds(),
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store conversion: %w", err)
	}
	return nil
}

func (s *PostgresAuditStorage) RecentConversions(ctx context.Context, limit int) ([]ConversionRecord, error) {
	limit = clampLimit(limit)

	query := `
	SELECT code, from_platform, to_platform, ok, outcome,
		converted_code, legs, duration_ms, created_at
	FROM conversion_audit
	ORDER BY created_at DESC, id DESC
	LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent conversions: %w", err)
	}
	defer rows.Close()

	out := make([]ConversionRecord, 0, limit)
	for rows.Next() {
		var rec ConversionRecord
		if err := rows.Scan(
			&rec.Code,
			&rec.FromPlatform,
			&rec.ToPlatform,
			&rec.OK,
			&rec.Outcome,
			&rec.ConvertedCode,
			&rec.Legs,
			&rec.DurationMs,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		rec.Duration = time.Duration(rec.DurationMs) * time.Millisecond
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversions: %w", err)
	}
	return out, nil
}

func (s *PostgresAuditStorage) Close() error {
	return s.db.Close()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > maxRecentConversions {
		return maxRecentConversions
	}
	return limit
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
