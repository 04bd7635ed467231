package analysis

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/sim"
	"gonum.org/v1/gonum/floats"
)

type Point struct{ X, Y float64 }

// Portrait is a planar projection of a trajectory.
type Portrait struct {
	XIndex, YIndex int
	Points         []Point
}

func checkIndex(flow *sim.Flow, idx ...int) error {
	for _, i := range idx {
		if i < 0 || i >= flow.Dim() {
			return fmt.Errorf("component %d of a %d-dimensional state: %w", i, flow.Dim(), dynamo.ErrDimensionMismatch)
		}
	}
	return nil
}

// NewPortrait pairs components xIdx and yIdx of every state of flow.
func NewPortrait(flow *sim.Flow, xIdx, yIdx int) (*Portrait, error) {
	if err := checkIndex(flow, xIdx, yIdx); err != nil {
		return nil, err
	}
	xs, ys := flow.Component(xIdx), flow.Component(yIdx)
	p := &Portrait{XIndex: xIdx, YIndex: yIdx, Points: make([]Point, len(xs))}
	for i := range xs {
		p.Points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return p, nil
}

// NewPoincareSection records (x, y) wherever component crossIdx passes
// level from below. Points are interpolated linearly between the two
// states around the crossing.
func NewPoincareSection(flow *sim.Flow, crossIdx int, level float64, xIdx, yIdx int) (*Portrait, error) {
	if err := checkIndex(flow, crossIdx, xIdx, yIdx); err != nil {
		return nil, err
	}
	c := flow.Component(crossIdx)
	xs, ys := flow.Component(xIdx), flow.Component(yIdx)
	p := &Portrait{XIndex: xIdx, YIndex: yIdx, Points: make([]Point, 0)}
	for j := 1; j < len(c); j++ {
		if !(c[j-1] < level && c[j] >= level) {
			continue
		}
		frac := (level - c[j-1]) / (c[j] - c[j-1])
		p.Points = append(p.Points, Point{
			X: xs[j-1] + frac*(xs[j]-xs[j-1]),
			Y: ys[j-1] + frac*(ys[j]-ys[j-1]),
		})
	}
	return p, nil
}

type bounds struct{ minX, rangeX, minY, rangeY float64 }

// bounds pads the bounding box of the points by 10% on each side.
func (p *Portrait) bounds() bounds {
	xs := make([]float64, len(p.Points))
	ys := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		xs[i], ys[i] = pt.X, pt.Y
	}
	pad := func(v []float64) (lo, rng float64) {
		lo, hi := floats.Min(v), floats.Max(v)
		rng = hi - lo
		if rng == 0 {
			rng = 1
		}
		return lo - 0.1*rng, 1.2 * rng
	}
	b := bounds{}
	b.minX, b.rangeX = pad(xs)
	b.minY, b.rangeY = pad(ys)
	return b
}

// ASCII plots the points on a width×height character grid, with axes
// where they cross the visible area.
func (p *Portrait) ASCII(width, height int) string {
	if len(p.Points) == 0 {
		return "no points\n"
	}
	b := p.bounds()
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	col := func(x float64) int { return int(math.Round((x - b.minX) / b.rangeX * float64(width-1))) }
	row := func(y float64) int { return height - 1 - int(math.Round((y-b.minY)/b.rangeY*float64(height-1))) }

	if c := col(0); c >= 0 && c < width {
		for r := range grid {
			grid[r][c] = '│'
		}
	}
	if r := row(0); r >= 0 && r < height {
		for c := range grid[r] {
			if grid[r][c] == '│' {
				grid[r][c] = '┼'
			} else {
				grid[r][c] = '─'
			}
		}
	}
	for _, pt := range p.Points {
		r, c := row(pt.Y), col(pt.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			grid[r][c] = '•'
		}
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteSVG writes the points as one polyline on a dark background.
func (p *Portrait) WriteSVG(w io.Writer, width, height int, stroke string) error {
	if len(p.Points) < 2 {
		return fmt.Errorf("svg of %d points: %w", len(p.Points), dynamo.ErrDimensionMismatch)
	}
	b := p.bounds()

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`, width, height, width, height, stroke)
	for i, pt := range p.Points {
		x := (pt.X - b.minX) / b.rangeX * float64(width)
		y := float64(height) - (pt.Y-b.minY)/b.rangeY*float64(height)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}
	sb.WriteString("\"/>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
