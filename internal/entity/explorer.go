// Package entity provides the things that stand on the overworld map.
package entity

// Explorer is the player's marker on the overworld.
type Explorer struct {
	X, Y   int
	Symbol rune
}

// NewExplorer creates an explorer at the given position.
func NewExplorer(x, y int) *Explorer {
	return &Explorer{X: x, Y: y, Symbol: '@'}
}

// Move updates the position by the given delta.
func (e *Explorer) Move(dx, dy int) {
	e.X += dx
	e.Y += dy
}

// Position returns the current x, y coordinates.
func (e *Explorer) Position() (int, int) {
	return e.X, e.Y
}
