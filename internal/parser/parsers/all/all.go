// Package all imports all available slip sources for side-effect registration.
//
// Import this package from your main to ensure all sources are registered:
//
//	import _ "github.com/Vodeneev/betcode/internal/parser/parsers/all"
package all

import (
	_ "github.com/Vodeneev/betcode/internal/parser/parsers/bet9ja"
	_ "github.com/Vodeneev/betcode/internal/parser/parsers/sportybet"
)
