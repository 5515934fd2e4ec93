// Package viz provides the terminal rendering used by the trajectory
// playback view: a Braille pixel canvas addressed in world coordinates
// plus a small set of lipgloss styles.
package viz

import "strings"

// Braille cells pack 2x4 dots; bit offsets per sub-pixel, Unicode base 0x2800.
var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a Braille-cell drawing surface mapped onto a rectangular
// world-coordinate viewport. The sub-pixel resolution is (2*cols) x (4*rows).
type Canvas struct {
	cols, rows             int
	xmin, xmax, ymin, ymax float64
	grid                   [][]rune
}

// NewCanvas builds a cols x rows cell canvas showing the world rectangle
// [xmin, xmax] x [ymin, ymax]. World y grows upward; the terminal's y
// grows downward, the mapping flips it.
func NewCanvas(cols, rows int, xmin, xmax, ymin, ymax float64) *Canvas {
	c := &Canvas{
		cols: cols, rows: rows,
		xmin: xmin, xmax: xmax, ymin: ymin, ymax: ymax,
		grid: make([][]rune, rows),
	}
	for i := range c.grid {
		c.grid[i] = make([]rune, cols)
	}
	c.Clear()
	return c
}

func (c *Canvas) Clear() {
	for i := range c.grid {
		for j := range c.grid[i] {
			c.grid[i][j] = 0x2800
		}
	}
}

func (c *Canvas) pixel(x, y float64) (px, py int, ok bool) {
	if c.xmax <= c.xmin || c.ymax <= c.ymin {
		return 0, 0, false
	}
	px = int((x - c.xmin) / (c.xmax - c.xmin) * float64(2*c.cols-1))
	py = int((c.ymax - y) / (c.ymax - c.ymin) * float64(4*c.rows-1))
	if px < 0 || py < 0 || px >= 2*c.cols || py >= 4*c.rows {
		return 0, 0, false
	}
	return px, py, true
}

// Point lights the dot nearest the world coordinate (x, y). Points
// outside the viewport are dropped.
func (c *Canvas) Point(x, y float64) {
	px, py, ok := c.pixel(x, y)
	if !ok {
		return
	}
	c.grid[py/4][px/2] |= dotBits[py%4][px%2]
}

// Segment draws a straight line between two world points with Bresenham
// stepping in sub-pixel space.
func (c *Canvas) Segment(x0, y0, x1, y1 float64) {
	p0x, p0y, ok0 := c.pixel(x0, y0)
	p1x, p1y, ok1 := c.pixel(x1, y1)
	if !ok0 || !ok1 {
		return
	}

	dx := abs(p1x - p0x)
	dy := abs(p1y - p0y)
	sx, sy := 1, 1
	if p0x > p1x {
		sx = -1
	}
	if p0y > p1y {
		sy = -1
	}
	err := dx - dy
	for {
		c.grid[p0y/4][p0x/2] |= dotBits[p0y%4][p0x%2]
		if p0x == p1x && p0y == p1y {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			p0x += sx
		}
		if e2 < dx {
			err += dx
			p0y += sy
		}
	}
}

// Polyline draws segments through consecutive (x, y) pairs.
func (c *Canvas) Polyline(xs, ys []float64) {
	for k := 1; k < len(xs) && k < len(ys); k++ {
		c.Segment(xs[k-1], ys[k-1], xs[k], ys[k])
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
