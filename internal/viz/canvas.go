package viz

import (
	"math"
	"strings"

	"github.com/san-kum/wobbles/internal/phasespace"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the sub-pixel at (x, y). The canvas is Width*2 by
// Height*4 sub-pixels.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawContours draws iso-lines of f, sampled nearest-neighbour onto the
// canvas, with heights on the vertical axis (highest at the top) and
// velocities across. Levels are spaced evenly in log f so the tails of a
// quasi-isothermal DF stay visible.
func (c *Canvas) DrawContours(f phasespace.Field, levels int) {
	pw, ph := c.Width*2, c.Height*4
	if f.Rows == 0 || f.Cols == 0 || levels < 1 {
		return
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < f.Rows; i++ {
		for _, v := range f.Row(i) {
			if v > 0 && !math.IsInf(v, 0) {
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
		}
	}
	if !(hi > lo) {
		return
	}
	logLo, span := math.Log(lo), math.Log(hi)-math.Log(lo)

	band := func(px, py int) int {
		i := (ph - 1 - py) * (f.Rows - 1) / max(ph-1, 1)
		j := px * (f.Cols - 1) / max(pw-1, 1)
		v := f.At(i, j)
		if !(v > 0) {
			return -1
		}
		return int(float64(levels) * (math.Log(v) - logLo) / span)
	}

	for py := 0; py < ph; py++ {
		for px := 0; px < pw; px++ {
			b := band(px, py)
			if (px+1 < pw && band(px+1, py) != b) || (py+1 < ph && band(px, py+1) != b) {
				c.Set(px, py)
			}
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
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
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
