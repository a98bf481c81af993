// Package bookingcode produces booking codes for the target platform.
//
// The codes are placeholders: they are derived from the source code with a
// stable hash and are NOT registered with any bookmaker. Two different source
// codes may map to the same placeholder.
package bookingcode

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/Vodeneev/betcode/internal/pkg/enums"
)

const space = 100000 // five digits

// Synthesize returns the placeholder code for source on platform to: the
// platform's two-letter prefix followed by five digits.
func Synthesize(to enums.Platform, source string) string {
	prefix := to.CodePrefix()
	if prefix == "" {
		prefix = "XX"
	}
	return fmt.Sprintf("%s%05d", prefix, xxhash.Sum64String(source)%space)
}
