package enums

import "strings"

// Platform is a bookmaker whose booking codes can be converted.
type Platform string

const (
	SportyBet Platform = "sportybet"
	Bet9ja    Platform = "bet9ja"
)

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case SportyBet, Bet9ja:
		return true
	}
	return false
}

// CodePrefix is the two-letter prefix of booking codes on the platform,
// empty for unknown platforms.
func (p Platform) CodePrefix() string {
	switch p {
	case SportyBet:
		return "SP"
	case Bet9ja:
		return "BJ"
	}
	return ""
}

// ParsePlatform normalizes s and returns the matching platform.
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

// Platforms returns all supported platforms.
func Platforms() []Platform {
	return []Platform{SportyBet, Bet9ja}
}
