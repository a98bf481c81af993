package slip

import (
	"testing"

	"github.com/Vodeneev/betcode/internal/pkg/models"
)

func TestParseLegsFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want [][2]string // home, away
	}{
		{"vs", "Arsenal vs Chelsea", [][2]string{{"Arsenal", "Chelsea"}}},
		{"v", "Lazio v Roma", [][2]string{{"Lazio", "Roma"}}},
		{"v dot", "Lazio v. Roma", [][2]string{{"Lazio", "Roma"}}},
		{"vs dot", "Ajax vs. PSV", [][2]string{{"Ajax", "PSV"}}},
		{"upper case", "BAYERN VS DORTMUND", [][2]string{{"BAYERN", "DORTMUND"}}},
		{"mixed case", "Inter Vs Milan", [][2]string{{"Inter", "Milan"}}},
		{"multi word names", "Manchester United vs Real Madrid CF", [][2]string{{"Manchester United", "Real Madrid CF"}}},
		{"surrounding whitespace", "   Porto   vs   Benfica   ", [][2]string{{"Porto", "Benfica"}}},
		{"tab separator", "Celtic\tvs\tRangers", [][2]string{{"Celtic", "Rangers"}}},
		{
			"skips other lines",
			"Booking code: 3F7A2\nArsenal vs Chelsea\n1X2 - Home\n@ 1.85\n\nLazio v Roma\nTotal odds 3.4",
			[][2]string{{"Arsenal", "Chelsea"}, {"Lazio", "Roma"}},
		},
		{"windows line endings", "Arsenal vs Chelsea\r\nLazio v Roma\r\n", [][2]string{{"Arsenal", "Chelsea"}, {"Lazio", "Roma"}}},
		{"word containing vs", "Canvas Dept", nil},
		{"separator without spaces", "Arsenalvs Chelsea", nil},
		{"missing away", "Arsenal vs", nil},
		{"missing home", "vs Chelsea", nil},
		{"empty", "", nil},
		{"blank lines", "\n \n\t\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			legs, ok := ParseLegsFromText(tt.text)
			if ok != (len(tt.want) > 0) {
				t.Fatalf("ok = %v, want %v (legs=%+v)", ok, len(tt.want) > 0, legs)
			}
			if len(legs) != len(tt.want) {
				t.Fatalf("got %d legs, want %d: %+v", len(legs), len(tt.want), legs)
			}
			for i, w := range tt.want {
				leg := legs[i]
				if leg.Home != w[0] || leg.Away != w[1] {
					t.Errorf("leg %d = %q vs %q, want %q vs %q", i, leg.Home, leg.Away, w[0], w[1])
				}
				if leg.Market != models.UnknownMarket || leg.Pick != "" || leg.Odds != nil {
					t.Errorf("leg %d should carry unknown market/pick/odds, got %+v", i, leg)
				}
			}
		})
	}
}

func TestParseLegsFromText_NeverPanics(t *testing.T) {
	inputs := []string{
		"vs", "v", "v.", " vs vs vs ", "A vs B vs C", "\x00\xff vs \xfe", "vs.\nvs.\n", "a v",
		string(make([]byte, 4096)),
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("ParseLegsFromText(%q) panicked: %v", in, r)
				}
			}()
			ParseLegsFromText(in)
		}()
	}
}

func TestParseLegsFromText_LazyHome(t *testing.T) {
	legs, ok := ParseLegsFromText("A vs B vs C")
	if !ok || len(legs) != 1 {
		t.Fatalf("expected one leg, got %+v", legs)
	}
	if legs[0].Home != "A" || legs[0].Away != "B vs C" {
		t.Errorf("got %q vs %q", legs[0].Home, legs[0].Away)
	}
}
