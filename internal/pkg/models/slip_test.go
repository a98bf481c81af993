package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSlip_CloneIsDeep(t *testing.T) {
	orig := &Slip{Legs: []Leg{{Home: "A", Away: "B", Odds: Float(1.5)}, {Home: "C", Away: "D"}}}
	cp := orig.Clone()

	cp.Legs[0].Home = "X"
	*cp.Legs[0].Odds = 3

	if orig.Legs[0].Home != "A" || *orig.Legs[0].Odds != 1.5 {
		t.Errorf("original mutated: %+v", orig.Legs[0])
	}
	if cp.Legs[1].Odds != nil {
		t.Error("nil odds became non-nil")
	}

	var nilSlip *Slip
	if nilSlip.Clone() != nil || !nilSlip.Empty() {
		t.Error("nil slip handling")
	}
	if !(&Slip{}).Empty() || orig.Empty() {
		t.Error("Empty()")
	}
}

func TestConvertResult_JSON(t *testing.T) {
	failed, _ := json.Marshal(Failed("From/To platforms are the same."))
	if string(failed) != `{"ok":false,"message":"From/To platforms are the same.","converted_code":null,"preview":null}` {
		t.Errorf("failed = %s", failed)
	}

	ok, _ := json.Marshal(Converted("Converted (live scrape).", "SP01234", &Slip{Legs: []Leg{{Home: "A", Away: "B", Market: UnknownMarket}}}))
	for _, want := range []string{`"ok":true`, `"converted_code":"SP01234"`, `"market":"Unknown"`, `"odds":null`} {
		if !strings.Contains(string(ok), want) {
			t.Errorf("converted = %s, missing %s", ok, want)
		}
	}
}

func TestConvertRequest_JSON(t *testing.T) {
	var req ConvertRequest
	if err := json.Unmarshal([]byte(`{"code":"BJ99999","from_platform":"bet9ja","to_platform":"sportybet"}`), &req); err != nil {
		t.Fatal(err)
	}
	if req.Code != "BJ99999" || req.FromPlatform != "bet9ja" || req.ToPlatform != "sportybet" {
		t.Errorf("req = %+v", req)
	}
}
