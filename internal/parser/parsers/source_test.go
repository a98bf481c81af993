package parsers

import (
	"context"
	"testing"

	"github.com/Vodeneev/betcode/internal/parser/slip"
	"github.com/Vodeneev/betcode/internal/pkg/config"
	"github.com/Vodeneev/betcode/internal/pkg/models"
)

type recorded struct {
	items []slip.Resolution
}

func (r *recorded) RecordResolution(res slip.Resolution) { r.items = append(r.items, res) }

func TestPlatformSource_Fixtures(t *testing.T) {
	rec := &recorded{}
	fixtures := map[string]models.Slip{
		"ab123": {Legs: []models.Leg{{Home: "Lazio", Away: "Roma", Market: "1X2", Pick: "1", Odds: models.Float(2.1)}}},
	}
	src := NewPlatformSource("demo", fixtures, nil, 0, rec)

	tests := []struct {
		name string
		code string
		want bool
	}{
		{"exact case-insensitive", "AB123", true},
		{"trimmed", "  ab123 ", true},
		{"unknown", "ZZ000", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := src.Resolve(context.Background(), tt.code)
			if ok != tt.want {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.code, ok, tt.want)
			}
			if ok && (len(got.Legs) != 1 || got.Legs[0].Home != "Lazio") {
				t.Errorf("unexpected slip %+v", got)
			}
		})
	}

	if len(rec.items) != len(tests) {
		t.Fatalf("recorded %d resolutions, want %d", len(rec.items), len(tests))
	}
	if rec.items[0].Strategy != slip.StrategyFixture || rec.items[2].Strategy != slip.StrategyNone {
		t.Errorf("strategies = %q, %q", rec.items[0].Strategy, rec.items[2].Strategy)
	}
}

func TestPlatformSource_FixtureIsCopied(t *testing.T) {
	fixtures := map[string]models.Slip{
		"X": {Legs: []models.Leg{{Home: "A", Away: "B", Odds: models.Float(1.5)}}},
	}
	src := NewPlatformSource("demo", fixtures, nil, 0, nil)

	first, _ := src.Resolve(context.Background(), "X")
	first.Legs[0].Home = "changed"
	*first.Legs[0].Odds = 9

	second, _ := src.Resolve(context.Background(), "X")
	if second.Legs[0].Home != "A" || *second.Legs[0].Odds != 1.5 {
		t.Errorf("fixture mutated through returned slip: %+v", second.Legs[0])
	}
}

func TestMergeFixturesAndOr(t *testing.T) {
	defaults := map[string]models.Slip{"A": {}, "B": {Legs: []models.Leg{{Home: "x"}}}}
	configured := map[string]models.Slip{"B": {Legs: []models.Leg{{Home: "y"}}}, "C": {}}

	merged := MergeFixtures(defaults, configured)
	if len(merged) != 3 || merged["B"].Legs[0].Home != "y" {
		t.Errorf("merged = %+v", merged)
	}

	if got := Or(nil, []string{"d"}); len(got) != 1 || got[0] != "d" {
		t.Errorf("Or(nil) = %v", got)
	}
	if got := Or([]string{"c"}, []string{"d"}); got[0] != "c" {
		t.Errorf("Or(configured) = %v", got)
	}
}

func TestRegistry(t *testing.T) {
	const name = "registry-test-source"
	Register(name, func(cfg *config.Config, env Env) Source {
		return NewPlatformSource(name, nil, nil, 0, nil)
	})

	f, ok := FactoryByName("  Registry-Test-Source ")
	if !ok {
		t.Fatal("factory not found by normalized name")
	}
	if got := f(config.Default(), Env{}).Name(); got != name {
		t.Errorf("Name() = %q", got)
	}

	found := false
	for _, n := range AvailableNames() {
		if n == name {
			found = true
		}
	}
	if !found {
		t.Errorf("AvailableNames() = %v", AvailableNames())
	}
	if _, ok := BuildAll(config.Default(), Env{})[name]; !ok {
		t.Error("BuildAll missed registered source")
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register(name, func(*config.Config, Env) Source { return nil })
}
