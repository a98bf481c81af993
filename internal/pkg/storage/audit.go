package storage

import (
	"context"
	"time"
)

// ConversionRecord is the metadata of one conversion request. Slips are never stored.
type ConversionRecord struct {
	Code          string        `json:"code"`
	FromPlatform  string        `json:"from_platform"`
	ToPlatform    string        `json:"to_platform"`
	OK            bool          `json:"ok"`
	Outcome       string        `json:"outcome"`
	ConvertedCode string        `json:"converted_code,omitempty"`
	Legs          int           `json:"legs"`
	Duration      time.Duration `json:"-"`
	DurationMs    int64         `json:"duration_ms"`
	CreatedAt     time.Time     `json:"created_at"`
}

// AuditStorage persists conversion metadata.
type AuditStorage interface {
	// RecordConversion appends one conversion outcome
	RecordConversion(ctx context.Context, rec ConversionRecord) error

	// RecentConversions returns the latest records, newest first
	RecentConversions(ctx context.Context, limit int) ([]ConversionRecord, error)

	Close() error
}

// NopAuditStorage discards records. Used when no database is configured.
type NopAuditStorage struct{}

var _ AuditStorage = NopAuditStorage{}

func (NopAuditStorage) RecordConversion(context.Context, ConversionRecord) error { return nil }

func (NopAuditStorage) RecentConversions(context.Context, int) ([]ConversionRecord, error) {
	return []ConversionRecord{}, nil
}

func (NopAuditStorage) Close() error { return nil }
