// Package bet9ja serves Bet9ja booking codes. Scraping is off until URL
// templates are configured; the built-in demo fixtures are always available.
package bet9ja

import (
	"github.com/Vodeneev/betcode/internal/parser/parsers"
	"github.com/Vodeneev/betcode/internal/parser/slip"
	"github.com/Vodeneev/betcode/internal/pkg/config"
	"github.com/Vodeneev/betcode/internal/pkg/enums"
	"github.com/Vodeneev/betcode/internal/pkg/models"
)

// DefaultFixtures are demo slips answered without any network access.
func DefaultFixtures() map[string]models.Slip {
	return map[string]models.Slip{
		"BJ99999": {Legs: []models.Leg{{
			Home:   "Barcelona",
			Away:   "Real Madrid",
			Market: "O/U 2.5",
			Pick:   "OVER",
			Odds:   models.Float(1.95),
		}}},
	}
}

func init() {
	parsers.Register(string(enums.Bet9ja), func(cfg *config.Config, env parsers.Env) parsers.Source {
		return NewSource(cfg, env)
	})
}

func NewSource(cfg *config.Config, env parsers.Env) *parsers.PlatformSource {
	pc := cfg.Platform(string(enums.Bet9ja))
	fixtures := parsers.MergeFixtures(DefaultFixtures(), pc.Fixtures)

	var resolver *slip.Resolver
	if len(pc.URLTemplates) > 0 {
		resolver = slip.NewResolver(string(enums.Bet9ja), env.Browser, pc.URLTemplates, pc.Selectors, env.Recorder)
	}
	return parsers.NewPlatformSource(string(enums.Bet9ja), fixtures, resolver, cfg.Resolver.Timeout, env.Recorder)
}
