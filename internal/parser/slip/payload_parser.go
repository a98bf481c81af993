package slip

import (
	"math"
	"strconv"
	"strings"

	"github.com/Vodeneev/betcode/internal/pkg/models"
)

// listKeys are the top-level payload keys that may hold the bet list, in priority order.
var listKeys = []string{"booking", "slip", "bets", "items", "data"}

// Field aliases used by the different page generations, most common first.
var (
	homeKeys   = []string{"home", "team1", "homeName"}
	awayKeys   = []string{"away", "team2", "awayName"}
	marketKeys = []string{"market", "marketName", "type"}
	pickKeys   = []string{"pick", "selection"}
	oddsKeys   = []string{"odds", "price", "odd"}
)

// LegsFromPayload maps the bet list of an embedded payload onto legs.
//
// The first key of listKeys holding a non-empty array wins, even if none of its
// elements turns into a leg: later keys are not consulted. Every object element
// yields a leg, possibly with empty fields; other elements are skipped.
func LegsFromPayload(payload any) ([]models.Leg, bool) {
	root, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}

	for _, key := range listKeys {
		items, ok := root[key].([]any)
		if !ok || len(items) == 0 {
			continue
		}

		legs := make([]models.Leg, 0, len(items))
		for _, it := range items {
			item, ok := it.(map[string]any)
			if !ok {
				continue
			}
			legs = append(legs, models.Leg{
				Home:   firstString(item, homeKeys),
				Away:   firstString(item, awayKeys),
				Market: firstString(item, marketKeys),
				Pick:   firstString(item, pickKeys),
				Odds:   firstOdds(item, oddsKeys),
			})
		}
		return legs, len(legs) > 0
	}
	return nil, false
}

// firstString returns the first alias holding a non-empty scalar, as text.
func firstString(item map[string]any, keys []string) string {
	for _, k := range keys {
		if s := scalarString(item[k]); s != "" {
			return s
		}
	}
	return ""
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if !t {
			return ""
		}
		return strconv.FormatBool(t)
	case map[string]any:
		// {"home": {"id": 1, "name": "Arsenal"}}
		if name, ok := t["name"].(string); ok {
			return strings.TrimSpace(name)
		}
	}
	return ""
}

// firstOdds returns the first alias holding a usable decimal price. An alias that is
// present but unparseable ends the search: the value is treated as absent.
func firstOdds(item map[string]any, keys []string) *float64 {
	for _, k := range keys {
		v, ok := item[k]
		if !ok || isBlank(v) {
			continue
		}
		return parseOdds(v)
	}
	return nil
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case float64:
		return t == 0
	case bool:
		return !t
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func parseOdds(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return nil
	}
	return &f
}
