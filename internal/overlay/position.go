// Package overlay draws one rendered block on top of another, e.g. a dialog
// over the console screen.
package overlay

// Position anchors the foreground relative to the background.
type Position int

const (
	Top Position = iota + 1
	Right
	Bottom
	Left
	Center
)
