package geom

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"
)

// RoundedRect builds a counterclockwise w x h rectangle with corner radius
// r, centered at (cx, cy). segs is the total arc resolution for a full
// circle; each corner receives a quarter of it. The corner radius is held
// constant regardless of w and h, which is what the Gridfinity profile
// family expects when the rectangle is lofted between breakpoints.
func RoundedRect(cx, cy, w, h, r float64, segs int) polyclip.Contour {
	n := segs / 4
	if n < 3 {
		n = 3
	}
	if r > w/2 {
		r = w / 2
	}
	if r > h/2 {
		r = h / 2
	}
	ox, oy := w/2-r, h/2-r

	corners := [4]polyclip.Point{
		{X: -ox, Y: -oy},
		{X: ox, Y: -oy},
		{X: ox, Y: oy},
		{X: -ox, Y: oy},
	}
	c := make(polyclip.Contour, 0, 4*n)
	for i, corner := range corners {
		base := float64(i)*math.Pi/2 + math.Pi
		for j := 0; j < n; j++ {
			a := base + float64(j)*(math.Pi/2)/float64(n)
			c = append(c, polyclip.Point{
				X: cx + corner.X + r*math.Cos(a),
				Y: cy + corner.Y + r*math.Sin(a),
			})
		}
	}
	return c
}

// Circle builds a counterclockwise circle contour centered at (cx, cy).
func Circle(cx, cy, r float64, segs int) polyclip.Contour {
	if segs < 8 {
		segs = 8
	}
	c := make(polyclip.Contour, segs)
	for i := 0; i < segs; i++ {
		a := 2 * math.Pi * float64(i) / float64(segs)
		c[i] = polyclip.Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return c
}

// Rect builds a counterclockwise w x h rectangle centered at (cx, cy),
// rotated by the given angle in degrees.
func Rect(cx, cy, w, h, degrees float64) polyclip.Contour {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	hw, hh := w/2, h/2
	corners := [4][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	c := make(polyclip.Contour, 4)
	for i, k := range corners {
		c[i] = polyclip.Point{
			X: cx + k[0]*cos - k[1]*sin,
			Y: cy + k[0]*sin + k[1]*cos,
		}
	}
	return c
}
