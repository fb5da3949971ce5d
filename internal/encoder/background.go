package encoder

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Background decides what shows through transparent source pixels.
type Background struct {
	Transparent bool
	Color       color.RGBA
}

// TransparentBackground keeps source transparency in the output.
var TransparentBackground = Background{Transparent: true}

var namedColors = map[string]color.RGBA{
	"white": {0xff, 0xff, 0xff, 0xff},
	"black": {0x00, 0x00, 0x00, 0xff},
}

// ParseBackground accepts "transparent", a color name, "#rgb" or
// "#rrggbb". An empty string means transparent.
func ParseBackground(s string) (Background, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "transparent" {
		return TransparentBackground, nil
	}
	if c, ok := namedColors[s]; ok {
		return Background{Color: c}, nil
	}

	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return Background{}, fmt.Errorf("invalid background %q", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Background{}, fmt.Errorf("invalid background %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Background{}, fmt.Errorf("invalid background %q: %w", s, err)
	}
	return Background{Color: color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}}, nil
}

func (b Background) String() string {
	if b.Transparent {
		return "transparent"
	}
	return fmt.Sprintf("#%02x%02x%02x", b.Color.R, b.Color.G, b.Color.B)
}
