package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is an orbiting perspective camera looking at the origin. World z
// points up on screen before any user rotation.
type Camera struct {
	Distance         float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

const defaultTilt = 0.35

func NewCamera() *Camera {
	return &Camera{Distance: 6, RotX: -math.Pi/2 + defaultTilt, RotZ: 0.6, Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// rotate applies z, then y, then x rotations.
func (c *Camera) rotate(p r3.Vec) r3.Vec {
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	return p
}

// Project maps p to dot coordinates on a w×h dot canvas. ok is false for
// points behind the camera.
func (c *Camera) Project(p r3.Vec, w, h int) (x, y int, ok bool) {
	q := r3.Scale(c.Zoom, c.rotate(p))
	if q.Z >= c.Distance-0.1 {
		return 0, 0, false
	}
	persp := c.Distance / (c.Distance - q.Z)
	unit := math.Min(float64(w), float64(h)) / 3
	x = int(math.Round(q.X*persp*unit)) + w/2
	y = int(math.Round(-q.Y*persp*unit)) + h/2
	return x, y, true
}

// Line draws the segment a-b.
func (c *Camera) Line(cv *Canvas, a, b r3.Vec) {
	w, h := cv.Dots()
	x0, y0, ok0 := c.Project(a, w, h)
	x1, y1, ok1 := c.Project(b, w, h)
	if ok0 && ok1 {
		cv.DrawLine(x0, y0, x1, y1)
	}
}

func (c *Camera) Point(cv *Canvas, p r3.Vec, r int) {
	w, h := cv.Dots()
	if x, y, ok := c.Project(p, w, h); ok {
		cv.Blob(x, y, r)
	}
}

// Circle draws the circle of the given radius about center in the plane
// spanned by the orthonormal u and v.
func (c *Camera) Circle(cv *Canvas, center, u, v r3.Vec, radius float64) {
	const segments = 48
	prev := r3.Add(center, r3.Scale(radius, u))
	for i := 1; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		next := r3.Add(center, r3.Add(r3.Scale(radius*math.Cos(a), u), r3.Scale(radius*math.Sin(a), v)))
		c.Line(cv, prev, next)
		prev = next
	}
}

// Globe draws the equator and two meridians of the sphere of radius r.
func (c *Camera) Globe(cv *Canvas, r float64) {
	ex, ey, ez := r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{Z: 1}
	c.Circle(cv, r3.Vec{}, ex, ey, r)
	c.Circle(cv, r3.Vec{}, ex, ez, r)
	c.Circle(cv, r3.Vec{}, ey, ez, r)
}
