package slip

import (
	"regexp"
	"strings"

	"github.com/Vodeneev/betcode/internal/pkg/models"
)

// versusLine matches "Home vs Away" with v, v., vs or vs. (any case) between the names.
var versusLine = regexp.MustCompile(`(?i)^(.+?)\s+v(?:s\.?|\.)?\s+(.+)$`)

// ParseLegsFromText extracts one leg per "Home vs Away" line of rendered page text.
// Market, pick and odds are unknown on this path. Lines that do not match are skipped.
func ParseLegsFromText(text string) ([]models.Leg, bool) {
	var legs []models.Leg
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := versusLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		home := strings.TrimSpace(m[1])
		away := strings.TrimSpace(m[2])
		if home == "" || away == "" {
			continue
		}
		legs = append(legs, models.Leg{
			Home:   home,
			Away:   away,
			Market: models.UnknownMarket,
		})
	}
	return legs, len(legs) > 0
}
