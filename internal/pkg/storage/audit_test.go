package storage

import (
	"context"
	"testing"

	"github.com/Vodeneev/betcode/internal/pkg/config"
)

func TestNewPostgresAuditStorage_RequiresDSN(t *testing.T) {
	if _, err := NewPostgresAuditStorage(&config.AuditConfig{}); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestNopAuditStorage(t *testing.T) {
	var s AuditStorage = NopAuditStorage{}
	if err := s.RecordConversion(context.Background(), ConversionRecord{Code: "X"}); err != nil {
		t.Fatal(err)
	}
	recs, err := s.RecentConversions(context.Background(), 10)
	if err != nil || recs == nil || len(recs) != 0 {
		t.Errorf("RecentConversions = %v, %v", recs, err)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 50},
		{-3, 50},
		{20, 20},
		{maxRecentConversions + 1, maxRecentConversions},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"SP12345", 100, "SP12345"},
		{"abcdef", 3, "abc"},
		{"aé", 2, "a"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
