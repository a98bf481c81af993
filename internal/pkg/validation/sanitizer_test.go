package validation

import (
	"math"
	"strings"
	"testing"

	"github.com/Vodeneev/betcode/internal/pkg/models"
)

func TestSanitizeLeg(t *testing.T) {
	leg := models.Leg{
		Home:   "  Manchester\tUnited \x00",
		Away:   "Real\n Madrid",
		Market: " O/U  2.5 ",
		Pick:   "OVER\x7F",
		Odds:   models.Float(1.95),
	}
	if !NewSanitizer().SanitizeLeg(&leg) {
		t.Fatal("leg rejected")
	}

	if leg.Home != "Manchester United" {
		t.Errorf("Home = %q", leg.Home)
	}
	if leg.Away != "Real Madrid" {
		t.Errorf("Away = %q", leg.Away)
	}
	if leg.Market != "O/U 2.5" {
		t.Errorf("Market = %q", leg.Market)
	}
	if leg.Pick != "OVER" {
		t.Errorf("Pick = %q", leg.Pick)
	}
	if leg.Odds == nil || *leg.Odds != 1.95 {
		t.Errorf("Odds = %v", leg.Odds)
	}
}

func TestSanitizeLeg_Odds(t *testing.T) {
	tests := []struct {
		in   *float64
		keep bool
	}{
		{nil, false},
		{models.Float(1.01), true},
		{models.Float(1), true},
		{models.Float(0.5), true},
		{models.Float(1500), true},
		{models.Float(0), false},
		{models.Float(-2), false},
		{models.Float(math.NaN()), false},
		{models.Float(math.Inf(1)), false},
	}
	s := NewSanitizer()
	for _, tt := range tests {
		leg := models.Leg{Home: "A", Away: "B", Odds: tt.in}
		s.SanitizeLeg(&leg)
		if (leg.Odds != nil) != tt.keep {
			t.Errorf("odds %v: kept=%v, want %v", tt.in, leg.Odds != nil, tt.keep)
		}
	}
}

func TestSanitizeSlip_DropsLegsWithEmptiedNames(t *testing.T) {
	slip := &models.Slip{Legs: []models.Leg{
		{Home: "\x01", Away: "Chelsea"},
		{Home: "Arsenal", Away: "\x00 \t"},
		{Home: "Everton", Away: "Fulham"},
		{Market: "1X2", Odds: models.Float(1.5)},
	}}
	NewSanitizer().SanitizeSlip(slip)

	if len(slip.Legs) != 2 {
		t.Fatalf("legs = %+v", slip.Legs)
	}
	if slip.Legs[0].Home != "Everton" || slip.Legs[0].Away != "Fulham" {
		t.Errorf("legs[0] = %+v", slip.Legs[0])
	}
	if slip.Legs[1].Market != "1X2" {
		t.Errorf("payload leg without names was dropped: %+v", slip.Legs[1])
	}

	all := &models.Slip{Legs: []models.Leg{{Home: "\x01", Away: "Chelsea"}}}
	NewSanitizer().SanitizeSlip(all)
	if !all.Empty() {
		t.Errorf("legs = %+v, want none", all.Legs)
	}
}

func TestSanitizeSlip_TruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 80) // 160 bytes
	slip := &models.Slip{Legs: []models.Leg{{Home: long, Away: "B"}}}
	NewSanitizer().SanitizeSlip(slip)

	home := slip.Legs[0].Home
	if len(home) > maxNameLen {
		t.Errorf("len = %d, want <= %d", len(home), maxNameLen)
	}
	if !strings.HasPrefix(long, home) || strings.ContainsRune(home, '�') {
		t.Errorf("truncation split a rune: %q", home)
	}

	NewSanitizer().SanitizeSlip(nil)
}
