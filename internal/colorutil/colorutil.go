// Package colorutil provides the colour helpers shared by the overlay dialogs,
// the annotation server and the LED bridge.
package colorutil

import (
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mapmarks/overlay/pkg/core"
	"golang.org/x/image/colornames"
)

// Palette is the fixed set of swatches offered next to the colour wheel.
var Palette = [16]string{
	"#ff0000", "#00ff00", "#0000ff", "#ff9900",
	"#ffff00", "#ff00ff", "#00ffff", "#9900ff",
	"#ff6666", "#66ff66", "#6666ff", "#ffcc66",
	"#ccff66", "#66ccff", "#ff66cc", "#cc66ff",
}

// legacyColors are the named tokens older markers were stored with.
var legacyColors = map[string]string{
	"blue":   "#0066cc",
	"red":    "#cc0000",
	"green":  "#00cc00",
	"orange": "#ff8800",
	"yellow": "#ffcc00",
	"violet": "#8800cc",
	"grey":   "#808080",
	"black":  "#333333",
}

// HSLToHex converts hue in degrees and saturation/lightness in percent to #rrggbb.
func HSLToHex(h, s, l float64) string {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return colorful.Hsl(h, clamp01(s/100), clamp01(l/100)).Hex()
}

// IsHex reports whether value is a #rrggbb or #rgb literal.
func IsHex(value string) bool {
	if !strings.HasPrefix(value, "#") {
		return false
	}
	_, err := colorful.Hex(value)
	return err == nil
}

// DisplayHex normalises a stored colour value to a hex literal. Hex values
// pass through lower-cased, legacy names map to their historic hex, other CSS
// names resolve through colornames, anything else becomes the default.
func DisplayHex(value string) string {
	value = strings.TrimSpace(value)
	if IsHex(value) {
		c, _ := colorful.Hex(value)
		return c.Hex()
	}
	name := strings.ToLower(value)
	if hex, ok := legacyColors[name]; ok {
		return hex
	}
	if rgba, ok := colornames.Map[name]; ok {
		c, _ := colorful.MakeColor(rgba)
		return c.Hex()
	}
	return core.DefaultColor
}

// RGB returns the 8-bit channels of a stored colour value. Values that cannot
// be resolved come back as white with ok=false.
func RGB(value string) (r, g, b uint8, ok bool) {
	value = strings.TrimSpace(value)
	if !IsHex(value) {
		name := strings.ToLower(value)
		if _, legacy := legacyColors[name]; !legacy {
			if _, css := colornames.Map[name]; !css {
				return 255, 255, 255, false
			}
		}
	}
	c, err := colorful.Hex(DisplayHex(value))
	if err != nil {
		return 255, 255, 255, false
	}
	r, g, b = c.RGB255()
	return r, g, b, true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
