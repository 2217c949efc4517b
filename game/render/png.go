package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/wricardo/interstellar-mission/game/engine"
)

const (
	DefaultCellSize = 24
	MinCellSize     = 8
	MaxCellSize     = 64
	titleHeight     = 40
)

// Options controls PNG output
type Options struct {
	CellSize int
	Title    string
}

var palette = map[string]color.RGBA{
	"background":  {255, 255, 255, 255},
	"title_bg":    {248, 249, 250, 255},
	"text":        {66, 66, 66, 255},
	"grid":        {210, 214, 220, 255},
	"origin":      {76, 175, 80, 255},
	"destination": {244, 67, 54, 255},
	"black_hole":  {20, 20, 28, 255},
	"star":        {255, 193, 7, 255},
	"wormhole":    {156, 39, 176, 255},
	"recharge":    {0, 150, 136, 255},
	"gate":        {229, 57, 53, 255},
	"path":        {255, 109, 0, 255},
	"ship":        {33, 150, 243, 255},
	"spent":       {189, 189, 189, 255},
	"white":       {255, 255, 255, 255},
}

// PNG draws the grid and, when frame is non-nil, the path travelled so far
func PNG(g *engine.Grid, frame *engine.PlaybackFrame, opts Options) ([]byte, error) {
	img := Image(g, frame, opts)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Image renders to an in-memory RGBA image
func Image(g *engine.Grid, frame *engine.PlaybackFrame, opts Options) *image.RGBA {
	cell := clampCellSize(opts.CellSize)
	width := g.Cols() * cell
	height := g.Rows()*cell + titleHeight

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{palette["background"]}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, width, titleHeight), &image.Uniform{palette["title_bg"]}, image.Point{}, draw.Src)

	visited := make(map[engine.Coord]bool)
	if frame != nil {
		for _, c := range frame.VisitedSoFar {
			visited[c] = true
		}
	}

	maxCost := 1
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			if cost := g.Cost(engine.Coord{Row: r, Col: c}); cost > maxCost {
				maxCost = cost
			}
		}
	}

	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			at := engine.Coord{Row: r, Col: c}
			x0, y0 := c*cell, r*cell+titleHeight
			rect := image.Rect(x0, y0, x0+cell, y0+cell)

			draw.Draw(img, rect, &image.Uniform{costShade(g.Cost(at), maxCost)}, image.Point{}, draw.Src)
			strokeRect(img, rect, palette["grid"], 1)

			if _, ok := g.RechargeFactor(at); ok {
				strokeRect(img, rect.Inset(2), palette["recharge"], 2)
			}
			if _, ok := g.AdmissionRequirement(at); ok {
				strokeRect(img, rect.Inset(1), palette["gate"], 2)
			}

			cx, cy := x0+cell/2, y0+cell/2
			radius := cell * 3 / 10
			switch {
			case at == g.Origin():
				fillCircle(img, cx, cy, radius, palette["origin"])
			case at == g.Destination():
				fillCircle(img, cx, cy, radius, palette["destination"])
			case g.IsBlackHole(at):
				fill := palette["black_hole"]
				if visited[at] {
					fill = palette["spent"]
				}
				fillCircle(img, cx, cy, radius, fill)
			case g.IsStar(at):
				fill := palette["star"]
				if visited[at] {
					fill = palette["spent"]
				}
				fillDiamond(img, cx, cy, radius, fill)
			}

			if exit, ok := g.WormholeExit(at); ok {
				fillCircle(img, cx, cy, cell/6, palette["wormhole"])
				ex, ey := exit.Col*cell+cell/2, exit.Row*cell+cell/2+titleHeight
				strokeCircle(img, ex, ey, cell/5, palette["wormhole"])
			}
		}
	}

	if frame != nil {
		path := frame.VisitedSoFar
		for i := 1; i < len(path); i++ {
			// Teleports are drawn as jumps, not lines.
			if !engine.Adjacent(path[i-1], path[i]) {
				continue
			}
			x1, y1 := center(path[i-1], cell)
			x2, y2 := center(path[i], cell)
			drawLine(img, x1, y1, x2, y2, palette["path"], max(1, cell/8))
		}
		sx, sy := center(frame.Position, cell)
		fillDiamond(img, sx, sy, cell/4+1, palette["white"])
		fillDiamond(img, sx, sy, cell/4, palette["ship"])
	}

	title := opts.Title
	if title == "" && frame != nil {
		title = fmt.Sprintf("solution %d/%d  step %d/%d  energy %d  stars %d",
			frame.SolutionIndex+1, frame.SolutionCount, frame.Step, frame.TotalSteps, frame.Energy, frame.Stars)
	}
	drawText(img, title, 8, 14, palette["text"])

	return img
}

func clampCellSize(size int) int {
	switch {
	case size <= 0:
		return DefaultCellSize
	case size < MinCellSize:
		return MinCellSize
	case size > MaxCellSize:
		return MaxCellSize
	}
	return size
}

func center(c engine.Coord, cell int) (int, int) {
	return c.Col*cell + cell/2, c.Row*cell + cell/2 + titleHeight
}

// costShade maps cheap cells to near-white and expensive ones to slate
func costShade(cost, maxCost int) color.RGBA {
	v := 250 - uint8(cost*120/maxCost)
	return color.RGBA{v, v, v + 4, 255}
}

func drawText(img *image.RGBA, text string, x, y int, c color.RGBA) {
	if text == "" {
		return
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
	}
	drawer.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y + 12)}
	drawer.DrawString(text)
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func strokeRect(img *image.RGBA, r image.Rectangle, c color.RGBA, width int) {
	for w := 0; w < width; w++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			setPixel(img, x, r.Min.Y+w, c)
			setPixel(img, x, r.Max.Y-1-w, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			setPixel(img, r.Min.X+w, y, c)
			setPixel(img, r.Max.X-1-w, y, c)
		}
	}
}

func fillCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				setPixel(img, cx+dx, cy+dy, c)
			}
		}
	}
}

func strokeCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	inner := (radius - 1) * (radius - 1)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d := dx*dx + dy*dy
			if d <= radius*radius && d >= inner {
				setPixel(img, cx+dx, cy+dy, c)
			}
		}
	}
}

func fillDiamond(img *image.RGBA, cx, cy, size int, c color.RGBA) {
	for dy := -size; dy <= size; dy++ {
		width := size - abs(dy)
		for dx := -width; dx <= width; dx++ {
			setPixel(img, cx+dx, cy+dy, c)
		}
	}
}

// drawLine is Bresenham with a square brush
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA, width int) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	x, y := x0, y0
	for {
		for i := -width / 2; i <= width/2; i++ {
			for j := -width / 2; j <= width/2; j++ {
				setPixel(img, x+i, y+j, c)
			}
		}
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
