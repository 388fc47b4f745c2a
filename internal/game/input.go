package game

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/cardclash/internal/battle"
)

// Action is what a key press asks the client to do.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionMove
	ActionPlayCard
	ActionEndTurn
	ActionCollection
	ActionOpenPack
	ActionBack
	ActionCursor
	ActionToggleDeck
	ActionContinue
)

// Input is a decoded key press.
type Input struct {
	Action Action
	DX, DY int // ActionMove, ActionCursor
	Index  int // ActionPlayCard
}

// inputFor maps a key to an action for the given view.
func inputFor(view battle.View, ev *tcell.EventKey) Input {
	if ev.Key() == tcell.KeyCtrlC {
		return Input{Action: ActionQuit}
	}
	if view == battle.ViewPackOpening {
		return Input{Action: ActionContinue}
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		if view == battle.ViewCollection {
			return Input{Action: ActionBack}
		}
		return Input{Action: ActionQuit}
	case tcell.KeyUp:
		return arrow(view, 0, -1)
	case tcell.KeyDown:
		return arrow(view, 0, 1)
	case tcell.KeyLeft:
		return arrow(view, -1, 0)
	case tcell.KeyRight:
		return arrow(view, 1, 0)
	case tcell.KeyRune:
	default:
		return Input{}
	}

	r := ev.Rune()
	switch {
	case r == 'q' || r == 'Q':
		return Input{Action: ActionQuit}
	case view == battle.ViewBattle && r >= '1' && r <= '9':
		return Input{Action: ActionPlayCard, Index: int(r - '1')}
	case view == battle.ViewBattle && r == 'e':
		return Input{Action: ActionEndTurn}
	case view == battle.ViewWorld && r == 'c':
		return Input{Action: ActionCollection}
	case view == battle.ViewCollection && r == 'c':
		return Input{Action: ActionBack}
	case (view == battle.ViewWorld || view == battle.ViewCollection) && r == 'p':
		return Input{Action: ActionOpenPack}
	case view == battle.ViewCollection && r == ' ':
		return Input{Action: ActionToggleDeck}
	}
	return Input{}
}

func arrow(view battle.View, dx, dy int) Input {
	switch view {
	case battle.ViewWorld:
		return Input{Action: ActionMove, DX: dx, DY: dy}
	case battle.ViewCollection:
		if dy != 0 {
			return Input{Action: ActionCursor, DY: dy}
		}
	}
	return Input{}
}
