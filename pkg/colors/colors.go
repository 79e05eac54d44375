package colors

import (
	"fmt"
	"strconv"
	"strings"
)

// Palette holds the hex colors cycled through for user names.
var Palette = []string{
	"#FF6B6B", // red
	"#4ECDC4", // cyan
	"#45B7D1", // light blue
	"#FFA07A", // salmon
	"#98D8C8", // light green
	"#F7DC6F", // yellow
	"#BB8FCE", // light purple
	"#85C1E2", // blue
	"#F8B739", // orange
	"#52B788", // green
	"#FF8FA3", // pink
	"#00D9FF", // neon blue
}

// SystemColor is used for messages not attributed to a user.
const SystemColor = "#808080"

// Named maps the client-facing color names to palette hex values.
var Named = map[string]string{
	"red":     "#FF6B6B",
	"green":   "#52B788",
	"blue":    "#45B7D1",
	"yellow":  "#F7DC6F",
	"magenta": "#BB8FCE",
	"cyan":    "#4ECDC4",
	"white":   "#FFFFFF",
}

// ForIndex returns the palette color for a registration color index.
func ForIndex(index int) string {
	if index < 0 {
		index = -index
	}
	return Palette[index%len(Palette)]
}

// HexToRGB converts "#RRGGBB" to its components. Invalid input falls back
// to gray rather than failing, matching the display-only use of colors.
func HexToRGB(hex string) (uint8, uint8, uint8) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 128, 128, 128
	}
	r := parseHexByte(hex[0:2])
	g := parseHexByte(hex[2:4])
	b := parseHexByte(hex[4:6])
	return r, g, b
}

func parseHexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 255
	}
	return uint8(v)
}

// HexToANSI returns the truecolor foreground escape for a hex color.
func HexToANSI(hex string) string {
	r, g, b := HexToRGB(hex)
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
}

// Reset is the ANSI attribute reset sequence.
const Reset = "\x1b[0m"
