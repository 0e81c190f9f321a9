package viz

import (
	"math"
	"strings"
)

// Braille cells are 2x4 dots; the canvas works in those sub-pixels.
var brailleBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the sub-pixel (x, y); out of range is ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= brailleBits[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine uses Bresenham.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Length() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Camera is an orthographic view: tilt about the x axis, then spin about z.
// Extent is the world distance shown from the centre to the nearest edge.
type Camera struct {
	Tilt, Spin float64
	Zoom       float64
	Extent     float64
}

func NewCamera() *Camera {
	return &Camera{Tilt: 1.0, Zoom: 1, Extent: 1}
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(50, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.02, c.Zoom/1.2) }

// Fit grows Extent so that p stays on screen.
func (c *Camera) Fit(p Vec3) {
	if l := p.Length() * 1.1; l > c.Extent {
		c.Extent = l
	}
}

func (c *Camera) rotate(p Vec3) Vec3 {
	cs, ss := math.Cos(c.Spin), math.Sin(c.Spin)
	p.X, p.Y = p.X*cs-p.Y*ss, p.X*ss+p.Y*cs
	ct, st := math.Cos(c.Tilt), math.Sin(c.Tilt)
	p.Y, p.Z = p.Y*ct-p.Z*st, p.Y*st+p.Z*ct
	return p
}

// Project maps p to sub-pixel coordinates on a sw x sh screen.
func (c *Camera) Project(p Vec3, sw, sh int) (int, int, bool) {
	r := c.rotate(p)
	half := float64(sh) / 2
	if w := float64(sw) / 2; w < half {
		half = w
	}
	k := half * c.Zoom / c.Extent
	sx := int(math.Round(r.X*k)) + sw/2
	sy := int(math.Round(-r.Z*k)) + sh/2
	return sx, sy, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// DrawTrail connects consecutive points.
func DrawTrail(c *Canvas, cam *Camera, pts []Vec3) {
	sw, sh := c.Width*2, c.Height*4
	for i := range pts {
		x1, y1, ok1 := cam.Project(pts[i], sw, sh)
		if i == 0 {
			if ok1 {
				c.Set(x1, y1)
			}
			continue
		}
		x0, y0, ok0 := cam.Project(pts[i-1], sw, sh)
		if ok0 || ok1 {
			c.DrawLine(x0, y0, x1, y1)
		}
	}
}

// DrawRing draws a circle of the given radius in the equatorial plane.
func DrawRing(c *Canvas, cam *Camera, radius float64) {
	const n = 72
	pts := make([]Vec3, n+1)
	for i := range pts {
		phi := 2 * math.Pi * float64(i) / n
		pts[i] = Vec3{radius * math.Cos(phi), radius * math.Sin(phi), 0}
	}
	DrawTrail(c, cam, pts)
}
