// Package sportybet resolves SportyBet booking codes by scraping the public share pages.
package sportybet

import (
	"github.com/Vodeneev/betcode/internal/parser/parsers"
	"github.com/Vodeneev/betcode/internal/parser/slip"
	"github.com/Vodeneev/betcode/internal/pkg/config"
	"github.com/Vodeneev/betcode/internal/pkg/enums"
)

// DefaultURLTemplates are the share page layouts seen in the wild, most common first.
var DefaultURLTemplates = []string{
	"https://www.sportybet.com/ng/m/sporty/booking?bookingCode={code}",
	"https://www.sportybet.com/ng/m/?b={code}",
	"https://www.sportybet.com/ng/m/sporty-code-share/{code}",
	"https://www.sportybet.com/share/{code}",
}

// DefaultSelectors locate the rendered slip container.
var DefaultSelectors = []string{
	"div.share-bet-slip",
	"div.booking-container",
	"div.bet-slip",
	"div.sports-bet-slip",
	"div[class*='slip']",
}

func init() {
	parsers.Register(string(enums.SportyBet), func(cfg *config.Config, env parsers.Env) parsers.Source {
		return NewSource(cfg, env)
	})
}

func NewSource(cfg *config.Config, env parsers.Env) *parsers.PlatformSource {
	pc := cfg.Platform(string(enums.SportyBet))
	resolver := slip.NewResolver(
		string(enums.SportyBet),
		env.Browser,
		parsers.Or(pc.URLTemplates, DefaultURLTemplates),
		parsers.Or(pc.Selectors, DefaultSelectors),
		env.Recorder,
	)
	return parsers.NewPlatformSource(string(enums.SportyBet), pc.Fixtures, resolver, cfg.Resolver.Timeout, env.Recorder)
}
