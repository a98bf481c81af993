package models

import (
	"github.com/Vodeneev/betcode/internal/pkg/enums"
)

// UnknownMarket is the market of legs whose bet type could not be read from the page.
const UnknownMarket = "Unknown"

// Leg is one selection within a slip
type Leg struct {
	Home   string   `json:"home" yaml:"home"`
	Away   string   `json:"away" yaml:"away"`
	Market string   `json:"market" yaml:"market"`
	Pick   string   `json:"pick" yaml:"pick"`
	Odds   *float64 `json:"odds" yaml:"odds"` // nil when missing or unparseable
}

// Slip is an ordered list of legs as discovered on the page or in the payload.
type Slip struct {
	Legs []Leg `json:"legs" yaml:"legs"`
}

// Empty reports whether the slip carries no legs. Empty slips are treated as "not found".
func (s *Slip) Empty() bool {
	return s == nil || len(s.Legs) == 0
}

// Clone returns a deep copy of the slip.
func (s *Slip) Clone() *Slip {
	if s == nil {
		return nil
	}
	out := &Slip{Legs: make([]Leg, len(s.Legs))}
	for i, leg := range s.Legs {
		out.Legs[i] = leg
		if leg.Odds != nil {
			v := *leg.Odds
			out.Legs[i].Odds = &v
		}
	}
	return out
}

// Float returns a pointer to v. Used for Leg.Odds literals.
func Float(v float64) *float64 {
	return &v
}

// ConvertRequest asks to convert a booking code between two platforms
type ConvertRequest struct {
	Code         string         `json:"code"`
	FromPlatform enums.Platform `json:"from_platform"`
	ToPlatform   enums.Platform `json:"to_platform"`
}

// ConvertResult is the response of a conversion. When OK is false,
// ConvertedCode and Preview are nil.
type ConvertResult struct {
	OK            bool    `json:"ok"`
	Message       string  `json:"message"`
	ConvertedCode *string `json:"converted_code"`
	Preview       *Slip   `json:"preview"`
}

// Failed builds a negative result.
func Failed(message string) ConvertResult {
	return ConvertResult{OK: false, Message: message}
}

// Converted builds a positive result.
func Converted(message, code string, preview *Slip) ConvertResult {
	return ConvertResult{OK: true, Message: message, ConvertedCode: &code, Preview: preview}
}
