// Package terminal is an interactive tcell viewer for mission playback.
//
// The grid is drawn two columns per cell with one glyph per feature; plain
// cells show their cost digit and the travelled path is highlighted. Arrow
// keys step through the selected solution, n and p switch solutions, a
// toggles autoplay and q quits.
package terminal
