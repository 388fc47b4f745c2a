// Package ui draws the terminal client with tcell.
package ui

import "github.com/gdamore/tcell/v2"

// Screen wraps tcell.Screen with the few calls the client needs.
type Screen struct {
	screen tcell.Screen
}

// NewScreen creates and initializes a terminal screen.
func NewScreen() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return Wrap(s)
}

// Wrap initializes s and wraps it. Tests pass a tcell simulation screen.
func Wrap(s tcell.Screen) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	s.Clear()
	return &Screen{screen: s}, nil
}

// Close finalizes the screen and restores terminal state.
func (s *Screen) Close() {
	s.screen.Fini()
}

// PollEvent waits for and returns the next terminal event. It returns nil
// once the screen is closed.
func (s *Screen) PollEvent() tcell.Event {
	return s.screen.PollEvent()
}

// Clear clears the screen buffer.
func (s *Screen) Clear() {
	s.screen.Clear()
}

// Show flushes the screen buffer to the terminal.
func (s *Screen) Show() {
	s.screen.Show()
}

// SetContent sets a single cell.
func (s *Screen) SetContent(x, y int, r rune, style tcell.Style) {
	s.screen.SetContent(x, y, r, nil, style)
}

// RuneAt returns the rune drawn at x, y.
func (s *Screen) RuneAt(x, y int) rune {
	r, _, _, _ := s.screen.GetContent(x, y)
	return r
}

// Text draws str from x, y and returns the column after it.
func (s *Screen) Text(x, y int, style tcell.Style, str string) int {
	for _, r := range str {
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// Size returns the current terminal dimensions.
func (s *Screen) Size() (width, height int) {
	return s.screen.Size()
}

// Sync forces a complete redraw.
func (s *Screen) Sync() {
	s.screen.Sync()
}
