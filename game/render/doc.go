// Package render draws universes and playback frames as PNG images.
//
// Cells are shaded by travel cost. Black holes and stars turn grey once the
// frame's path has consumed them, wormhole entrances carry a dot with a ring
// on their exit, recharge zones and admission gates are outlined, and the
// path travelled so far is drawn with the ship marker at the frame position.
// Text uses the basicfont face from golang.org/x/image.
package render
