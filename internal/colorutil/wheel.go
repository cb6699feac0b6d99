package colorutil

import (
	"math"
	"strconv"
)

// Wheel is the circular hue/saturation picker. Angle maps to hue, distance
// from the centre to saturation; lightness is fixed at 50%.
type Wheel struct {
	CenterX float64
	CenterY float64
	Radius  float64
}

// DefaultWheel matches the 150px canvas the dialogs draw.
var DefaultWheel = Wheel{CenterX: 75, CenterY: 75, Radius: 65}

// ColorAt returns the colour under a click at canvas position (x, y).
// Clicks outside the wheel report ok=false.
func (w Wheel) ColorAt(x, y float64) (hex string, ok bool) {
	dx := x - w.CenterX
	dy := y - w.CenterY
	dist := math.Hypot(dx, dy)
	if w.Radius <= 0 || dist > w.Radius {
		return "", false
	}
	hue := math.Mod(math.Atan2(dy, dx)*180/math.Pi+360, 360)
	sat := math.Min(dist/w.Radius, 1)
	return HSLToHex(hue, sat*100, 50), true
}

// Cells discretises the wheel for rendering: one cell per degree and radius
// pixel, in hsl() CSS form.
func (w Wheel) Cells(fn func(x, y float64, css string)) {
	r := int(w.Radius)
	for angle := 0; angle < 360; angle++ {
		rad := float64(angle) * math.Pi / 180
		cos, sin := math.Cos(rad), math.Sin(rad)
		for d := 0; d < r; d++ {
			sat := float64(d) / w.Radius * 100
			fn(w.CenterX+float64(d)*cos, w.CenterY+float64(d)*sin, hslCSS(float64(angle), sat))
		}
	}
}

func hslCSS(h, s float64) string {
	return "hsl(" + strconv.FormatFloat(h, 'f', -1, 64) + ", " + strconv.FormatFloat(s, 'f', 2, 64) + "%, 50%)"
}
