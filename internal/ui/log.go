package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/cardclash/internal/battle"
)

// MessageLog keeps the most recent notifications. It is not safe for
// concurrent use; the client only touches it from its loop.
type MessageLog struct {
	limit int
	lines []battle.Notification
}

// NewMessageLog creates a log holding up to limit lines.
func NewMessageLog(limit int) *MessageLog {
	return &MessageLog{limit: max(limit, 1)}
}

// Notify implements battle.Notifier.
func (l *MessageLog) Notify(n battle.Notification) {
	l.lines = append(l.lines, n)
	if over := len(l.lines) - l.limit; over > 0 {
		l.lines = append(l.lines[:0], l.lines[over:]...)
	}
}

// Add logs an info line.
func (l *MessageLog) Add(msg string) {
	l.Notify(battle.Notification{Level: battle.LevelInfo, Message: msg})
}

// Lines returns the logged notifications, oldest first.
func (l *MessageLog) Lines() []battle.Notification {
	return append([]battle.Notification(nil), l.lines...)
}

func levelStyle(level battle.Level) tcell.Style {
	switch level {
	case battle.LevelSuccess:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case battle.LevelWarning:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	case battle.LevelError:
		return tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorWhite)
	}
}
