package terminal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/interstellar-mission/game/engine"
)

const helpLine = "←/→ step  r reset  n/p solution  a autoplay  q quit"

// Glyphs used for cells. Cells without a feature show their cost digit.
const (
	GlyphOrigin      = 'O'
	GlyphDestination = 'D'
	GlyphBlackHole   = '@'
	GlyphStar        = '*'
	GlyphWormhole    = 'W'
	GlyphRecharge    = '+'
	GlyphGate        = '#'
	GlyphShip        = 'S'
	GlyphSpent       = '.'
	GlyphCostly      = '%'
)

var (
	styleDefault = tcell.StyleDefault
	styleOrigin  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleDest    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleHole    = tcell.StyleDefault.Foreground(tcell.ColorPurple).Bold(true)
	styleStar    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleWarp    = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleBoost   = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleGate    = tcell.StyleDefault.Foreground(tcell.ColorMaroon)
	styleTrail   = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	styleShip    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlue).Bold(true)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Viewer plays back a resolved mission on a terminal screen
type Viewer struct {
	screen   tcell.Screen
	engine   *engine.MissionEngine
	interval time.Duration
	playing  bool
}

// NewViewer wraps an initialized screen. interval is the autoplay step delay.
func NewViewer(screen tcell.Screen, eng *engine.MissionEngine, interval time.Duration) *Viewer {
	if interval <= 0 {
		interval = 300 * time.Millisecond
	}
	return &Viewer{screen: screen, engine: eng, interval: interval}
}

// Playing reports whether autoplay is on
func (v *Viewer) Playing() bool {
	return v.playing
}

// SetPlaying toggles autoplay
func (v *Viewer) SetPlaying(on bool) {
	v.playing = on
}

// Draw renders the grid and status lines for the current playback frame
func (v *Viewer) Draw() {
	v.screen.Clear()

	frame, err := v.engine.Playback()
	g := v.engine.Grid()

	trail := make(map[engine.Coord]bool)
	if frame != nil {
		for _, c := range frame.VisitedSoFar {
			trail[c] = true
		}
	}

	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			at := engine.Coord{Row: r, Col: c}
			glyph, style := cellGlyph(g, at, trail[at])
			if frame != nil && frame.Position == at {
				glyph, style = GlyphShip, styleShip
			}
			v.screen.SetContent(c*2, r, glyph, nil, style)
		}
	}

	status := ""
	switch {
	case err != nil:
		status = "no playback: " + err.Error()
	case frame != nil:
		events := make([]string, len(frame.Events))
		for i, e := range frame.Events {
			events[i] = string(e)
		}
		status = fmt.Sprintf("solution %d/%d  step %d/%d  energy %d  stars %d  [%s]",
			frame.SolutionIndex+1, frame.SolutionCount, frame.Step, frame.TotalSteps,
			frame.Energy, frame.Stars, strings.Join(events, ","))
		if v.playing {
			status += "  ▶"
		}
	}
	v.drawText(0, g.Rows()+1, status, styleDefault)
	v.drawText(0, g.Rows()+2, helpLine, styleDim)

	v.screen.Show()
}

func (v *Viewer) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func cellGlyph(g *engine.Grid, at engine.Coord, passed bool) (rune, tcell.Style) {
	switch {
	case at == g.Origin():
		return GlyphOrigin, styleOrigin
	case at == g.Destination():
		return GlyphDestination, styleDest
	case g.IsBlackHole(at):
		if passed {
			return GlyphSpent, styleDim
		}
		return GlyphBlackHole, styleHole
	case g.IsStar(at):
		if passed {
			return GlyphSpent, styleDim
		}
		return GlyphStar, styleStar
	}
	if _, ok := g.WormholeExit(at); ok {
		return GlyphWormhole, styleWarp
	}
	if _, ok := g.RechargeFactor(at); ok {
		return GlyphRecharge, styleBoost
	}
	if _, ok := g.AdmissionRequirement(at); ok {
		return GlyphGate, styleGate
	}

	style := styleDefault
	if passed {
		style = styleTrail
	}
	cost := g.Cost(at)
	if cost > 9 {
		return GlyphCostly, style
	}
	return rune('0' + cost), style
}

// HandleEvent applies one input event and reports whether the viewer should exit
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyRight:
			v.engine.Step(1)
		case tcell.KeyLeft:
			v.engine.Step(-1)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return true
			case 'l', ' ':
				v.engine.Step(1)
			case 'h':
				v.engine.Step(-1)
			case 'r':
				v.engine.ResetPlayback()
			case 'n':
				v.cycleSolution(1)
			case 'p':
				v.cycleSolution(-1)
			case 'a':
				v.playing = !v.playing
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return false
}

func (v *Viewer) cycleSolution(delta int) {
	result := v.engine.Result()
	if result == nil || len(result.Solutions) == 0 {
		return
	}
	current, _ := v.engine.Cursor()
	n := len(result.Solutions)
	v.engine.SelectSolution(((current+delta)%n + n) % n)
}

// Tick advances autoplay by one step and stops at the destination
func (v *Viewer) Tick() {
	if !v.playing {
		return
	}
	frame, err := v.engine.Step(1)
	if err != nil || frame.Done {
		v.playing = false
	}
}

// Run draws and handles input until the user quits or ctx is cancelled
func (v *Viewer) Run(ctx context.Context) error {
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		defer close(events)
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if v.HandleEvent(ev) {
				return nil
			}
			v.Draw()
		case <-ticker.C:
			if v.playing {
				v.Tick()
				v.Draw()
			}
		}
	}
}
