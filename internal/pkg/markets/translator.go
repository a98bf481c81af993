// Package markets translates market names between bookmaker vocabularies.
//
// The table is keyed by the source platform and the market name as it appears on
// that platform's slip; the value is the name used on the other side.
//
// ## SportyBet
//
// 1X2 → Match Result; GG → Both Teams To Score; O/U 2.5 → Over/Under 2.5 Goals.
//
// ## Bet9ja
//
// Match Result → 1X2; Both Teams To Score → GG; Over/Under 2.5 Goals → O/U 2.5.
package markets

import (
	"strings"

	"github.com/Vodeneev/betcode/internal/pkg/config"
	"github.com/Vodeneev/betcode/internal/pkg/enums"
	"github.com/Vodeneev/betcode/internal/pkg/models"
)

type key struct {
	platform enums.Platform
	market   string
}

var defaultTable = map[key]string{
	{enums.SportyBet, "1X2"}:               "Match Result",
	{enums.SportyBet, "GG"}:                "Both Teams To Score",
	{enums.SportyBet, "O/U 2.5"}:           "Over/Under 2.5 Goals",
	{enums.Bet9ja, "Match Result"}:         "1X2",
	{enums.Bet9ja, "Both Teams To Score"}:  "GG",
	{enums.Bet9ja, "Over/Under 2.5 Goals"}: "O/U 2.5",
}

// Translator rewrites leg markets. It is immutable after construction and safe for concurrent use.
type Translator struct {
	table map[key]string
}

// NewTranslator returns a translator with the built-in table plus extra mappings,
// which override built-in entries with the same key.
func NewTranslator(extra []config.MarketMapping) *Translator {
	table := make(map[key]string, len(defaultTable)+len(extra))
	for k, v := range defaultTable {
		table[k] = v
	}
	for _, m := range extra {
		p, ok := enums.ParsePlatform(m.Platform)
		if !ok || m.From == "" || m.To == "" {
			continue
		}
		table[key{p, m.From}] = m.To
	}
	return &Translator{table: table}
}

// Market returns the target name of market as written on the from platform,
// or market itself when there is no mapping.
func (t *Translator) Market(from enums.Platform, market string) string {
	if mapped, ok := t.table[key{from, market}]; ok {
		return mapped
	}
	if mapped, ok := t.table[key{from, strings.TrimSpace(market)}]; ok {
		return mapped
	}
	return market
}

// Translate returns a copy of slip with every market translated. The input is not modified.
// The lookup is keyed by the source platform only; to is kept for symmetry with callers
// that will need per-target tables.
func (t *Translator) Translate(slip *models.Slip, from, to enums.Platform) *models.Slip {
	out := slip.Clone()
	if out == nil {
		return nil
	}
	for i := range out.Legs {
		out.Legs[i].Market = t.Market(from, out.Legs[i].Market)
	}
	return out
}
