package chat

import (
	"math"
	"unicode/utf16"
)

// Palette is the fixed set of display colors for usernames.
var Palette = []string{
	"#6a4db7",
	"#f25f5c",
	"#70c1b3",
	"#b5ac07",
	"#577590",
	"#9a8c98",
}

// OwnColor is used for messages sent under the local identity.
const OwnColor = "#6a4db7"

// UserColor picks a palette entry from a string hash of username. The hash
// walks UTF-16 code units and keeps a float accumulator that is only
// truncated to 32 bits for the shift, so browser clients pick the same color.
func UserColor(username string) string {
	var hash float64
	for _, unit := range utf16.Encode([]rune(username)) {
		hash = float64(unit) + (float64(toInt32(hash)<<5) - hash)
	}
	return Palette[int(math.Mod(math.Abs(hash), float64(len(Palette))))]
}

// toInt32 converts f the way a JavaScript bitwise operand is converted.
func toInt32(f float64) int32 {
	return int32(uint32(int64(math.Mod(math.Trunc(f), 1<<32))))
}
