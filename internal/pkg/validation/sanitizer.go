package validation

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Vodeneev/betcode/internal/pkg/models"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

const (
	maxNameLen   = 100
	maxMarketLen = 200
)

// Sanitizer cleans scraped slip data before it is shown to users
type Sanitizer struct{}

// NewSanitizer creates a new sanitizer
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// SanitizeSlip sanitizes every leg in place and drops legs whose team name
// was reduced to nothing by the cleanup.
func (s *Sanitizer) SanitizeSlip(slip *models.Slip) {
	if slip == nil {
		return
	}
	kept := slip.Legs[:0]
	for i := range slip.Legs {
		if s.SanitizeLeg(&slip.Legs[i]) {
			kept = append(kept, slip.Legs[i])
		}
	}
	slip.Legs = kept
}

// SanitizeLeg sanitizes leg data. It returns false when a non-empty home or
// away name became empty, in which case the leg must not be shown.
func (s *Sanitizer) SanitizeLeg(leg *models.Leg) bool {
	if leg == nil {
		return false
	}

	hadHome, hadAway := leg.Home != "", leg.Away != ""
	leg.Home = s.sanitizeTeamName(leg.Home)
	leg.Away = s.sanitizeTeamName(leg.Away)
	leg.Market = s.sanitizeString(leg.Market, maxMarketLen)
	leg.Pick = s.sanitizeString(leg.Pick, maxMarketLen)

	if leg.Odds != nil && !validOdds(*leg.Odds) {
		leg.Odds = nil
	}

	return !(hadHome && leg.Home == "") && !(hadAway && leg.Away == "")
}

// validOdds matches the normalizer's rule: positive and finite.
func validOdds(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (s *Sanitizer) sanitizeString(str string, limit int) string {
	sanitized := controlChars.ReplaceAllString(str, " ")
	sanitized = strings.TrimSpace(multiSpace.ReplaceAllString(sanitized, " "))
	return truncate(sanitized, limit)
}

func (s *Sanitizer) sanitizeTeamName(name string) string {
	return s.sanitizeString(name, maxNameLen)
}

// truncate cuts s to at most limit bytes without splitting a UTF-8 sequence.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
