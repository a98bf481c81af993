package slip

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

// payloadPatterns locate state objects that booking pages assign in inline scripts,
// in priority order. Captures are lazy: they stop at the first terminator, which is
// right for flat objects and truncates nested ones (the relaxed parse closes them).
var payloadPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)window\.__INITIAL_STATE__\s*=\s*(\{.*?\});`),
	regexp.MustCompile(`(?s)window\.__DATA__\s*=\s*(\{.*?\});`),
	regexp.MustCompile(`(?s)var\s+initialState\s*=\s*(\{.*?\});`),
	regexp.MustCompile(`(?s)(\{"booking".*?\})`),
	regexp.MustCompile(`(?s)(\{"bets".*?\})`),
}

// LocatePayload returns the first embedded JSON state found in markup.
// The result is a map[string]any or []any as produced by encoding/json.
func LocatePayload(markup string) (any, bool) {
	for i, re := range payloadPatterns {
		m := re.FindStringSubmatch(markup)
		if m == nil {
			continue
		}
		if payload, ok := decodePayload(m[1]); ok {
			return payload, true
		}
		slog.Debug("Embedded payload matched but could not be decoded", "pattern", i, "size", len(m[1]))
	}
	return nil, false
}

// decodePayload parses raw strictly and, failing that, once more after repairing
// the usual scraping damage (truncated brackets, trailing commas, JS literals).
func decodePayload(raw string) (any, bool) {
	if v, ok := decodeStructure(raw); ok {
		return v, true
	}

	repaired, err := repairJSON(raw)
	if err != nil {
		return nil, false
	}
	return decodeStructure(repaired)
}

func repairJSON(raw string) (out string, err error) {
	// the repairer is a hand-written scanner; a panic on hostile input must stay a parse failure
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("json repair panic: %v", r)
		}
	}()
	return jsonrepair.RepairJSON(raw)
}

func decodeStructure(raw string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false
	}
	switch v.(type) {
	case map[string]any, []any:
		return v, true
	default:
		return nil, false
	}
}
