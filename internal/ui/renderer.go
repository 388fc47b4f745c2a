package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/cardclash/internal/battle"
	"github.com/samdwyer/cardclash/internal/combat"
	"github.com/samdwyer/cardclash/internal/entity"
	"github.com/samdwyer/cardclash/internal/gamedata"
	"github.com/samdwyer/cardclash/internal/world"
)

const (
	cardWidth = 26
	barWidth  = 20
)

var (
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleHealth = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleHurt   = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Renderer draws each view of the client.
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Begin clears the buffer before a frame.
func (r *Renderer) Begin() {
	r.screen.Clear()
}

// End flushes the frame.
func (r *Renderer) End() {
	r.screen.Show()
}

// World draws the map, encounters and explorer, then a status line under
// the map.
func (r *Renderer) World(m *world.Map, explorer *entity.Explorer, encounters []*entity.Encounter, status string) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			tile := m.TileAt(x, y)
			r.screen.SetContent(x, y, tile.Rune(), tileStyle(tile))
		}
	}
	for _, e := range encounters {
		r.screen.SetContent(e.X, e.Y, e.Symbol(), tcell.StyleDefault.Foreground(e.Color()).Bold(true))
	}
	r.screen.SetContent(explorer.X, explorer.Y, explorer.Symbol, tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))
	r.screen.Text(0, m.Height, styleDim, status)
}

func tileStyle(tile world.Tile) tcell.Style {
	switch tile {
	case world.TileRock:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	case world.TileGrass:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	case world.TilePath:
		return tcell.StyleDefault.Foreground(tcell.ColorOlive)
	default:
		return tcell.StyleDefault
	}
}

// Battle draws both sides, the cards on the table and the player's hand.
// It returns the first free row.
func (r *Renderer) Battle(s battle.State) int {
	header := fmt.Sprintf("Level %d battle  |  %s  |  cards played: %d", s.Level, s.Phase(), s.Turns)
	r.screen.Text(0, 0, styleTitle, header)

	r.side(0, 2, s.Enemy)
	r.activeCard(0, 4, "Enemy plays", s.Enemy.ActiveCard)
	r.activeCard(0, 7, "You play", s.Player.ActiveCard)
	r.side(0, 10, s.Player)

	row := 12
	r.screen.Text(0, row, styleText, "Your hand")
	row++
	for i, card := range s.Player.Hand {
		r.card(i*cardWidth, row, i, card, s.Phase() == battle.PhasePlayerTurn)
	}
	row += 4

	switch s.Outcome {
	case battle.OutcomeWin:
		line := fmt.Sprintf("Victory! +%d XP", s.ExperienceGained)
		if s.Reward != nil {
			line += ", reward: " + s.Reward.Name
		}
		r.screen.Text(0, row, styleHealth.Bold(true), line)
	case battle.OutcomeLose:
		r.screen.Text(0, row, styleHurt.Bold(true), "Defeat.")
	default:
		r.screen.Text(0, row, styleDim, "1-3 play a card   e end turn   q quit")
	}
	return row + 2
}

func (r *Renderer) side(x, y int, s battle.Side) {
	x = r.screen.Text(x, y, styleText, fmt.Sprintf("%-18s ", truncate(s.Name, 18)))
	x = r.bar(x, y, s.Health, s.MaxHealth)
	r.screen.Text(x, y, styleText, fmt.Sprintf(" %d/%d", s.Health, s.MaxHealth))

	status := ledgerText(s.Ledger)
	if s.SkipNextTurn {
		skip := "stunned"
		if s.Ledger.Has(gamedata.EffectFreeze) {
			skip = "frozen"
		}
		status = strings.TrimPrefix(status+", "+skip, ", ")
	}
	if status != "" {
		r.screen.Text(2, y+1, styleDim, status)
	}
}

// bar draws a health bar and returns the column after it.
func (r *Renderer) bar(x, y, value, maxValue int) int {
	filled := 0
	if maxValue > 0 {
		filled = value * barWidth / maxValue
	}
	style := styleHealth
	if value*3 < maxValue {
		style = styleHurt
	}
	r.screen.SetContent(x, y, '[', styleText)
	for i := 0; i < barWidth; i++ {
		ch, st := '-', styleDim
		if i < filled {
			ch, st = '#', style
		}
		r.screen.SetContent(x+1+i, y, ch, st)
	}
	r.screen.SetContent(x+1+barWidth, y, ']', styleText)
	return x + barWidth + 2
}

func (r *Renderer) activeCard(x, y int, label string, card *gamedata.Card) {
	if card == nil {
		r.screen.Text(x, y, styleDim, label+": -")
		return
	}
	x = r.screen.Text(x, y, styleText, label+": ")
	r.screen.Text(x, y, tcell.StyleDefault.Foreground(card.TCellColor()).Bold(true), card.Name)
	r.screen.Text(2, y+1, styleDim, truncate(card.Description, 76))
}

func (r *Renderer) card(x, y, index int, card gamedata.Card, playable bool) {
	keyStyle := styleDim
	if playable {
		keyStyle = styleTitle
	}
	nx := r.screen.Text(x, y, keyStyle, fmt.Sprintf("[%d] ", index+1))
	r.screen.Text(nx, y, tcell.StyleDefault.Foreground(card.TCellColor()), truncate(card.Name, cardWidth-5))
	r.screen.Text(x, y+1, styleText, truncate(fmt.Sprintf("%s %s  P%d", card.Rarity, card.Type, card.Power), cardWidth-1))
	if card.HasEffect() {
		r.screen.Text(x, y+2, styleDim, truncate(fmt.Sprintf("%s %d/%dt", card.Effect, card.EffectPower, card.EffectDuration), cardWidth-1))
	}
}

// Collection lists the cards with a cursor; deck members are starred.
func (r *Renderer) Collection(cards []gamedata.Card, deck []string, cursor, packs int) int {
	inDeck := make(map[string]bool, len(deck))
	for _, id := range deck {
		inDeck[id] = true
	}
	r.screen.Text(0, 0, styleTitle, fmt.Sprintf("Collection: %d cards, %d in deck, %d unopened packs", len(cards), len(deck), packs))

	_, height := r.screen.Size()
	visible := max(height-8, 5)
	first := 0
	if cursor >= visible {
		first = cursor - visible + 1
	}
	row := 2
	for i := first; i < len(cards) && i < first+visible; i++ {
		card := cards[i]
		mark := "  "
		if inDeck[card.ID] {
			mark = "* "
		}
		style := tcell.StyleDefault.Foreground(card.TCellColor())
		if i == cursor {
			style = style.Reverse(true)
		}
		x := r.screen.Text(0, row, styleText, mark)
		r.screen.Text(x, row, style, truncate(fmt.Sprintf("%-24s %-9s %-8s P%-2d %s", card.Name, card.Rarity, card.Type, card.Power, card.EffectKind()), 76))
		row++
	}
	row++
	r.screen.Text(0, row, styleDim, "up/down select   space toggle deck   p open pack   esc back")
	return row + 2
}

// PackOpening shows the cards that came out of a pack.
func (r *Renderer) PackOpening(cards []gamedata.Card, packsLeft int) int {
	r.screen.Text(0, 0, styleTitle, "Pack opened!")
	row := 2
	for _, card := range cards {
		r.screen.Text(0, row, tcell.StyleDefault.Foreground(card.TCellColor()).Bold(true), card.Name)
		r.screen.Text(2, row+1, styleText, truncate(fmt.Sprintf("%s %s, power %d", card.Rarity, card.Type, card.Power), 76))
		r.screen.Text(2, row+2, styleDim, truncate(card.Description, 76))
		row += 4
	}
	r.screen.Text(0, row, styleDim, fmt.Sprintf("%d packs left   any key to continue", packsLeft))
	return row + 2
}

// Messages draws the log from row top down.
func (r *Renderer) Messages(log *MessageLog, top int) {
	for i, n := range log.Lines() {
		r.screen.Text(0, top+i, levelStyle(n.Level), n.Message)
	}
}

func ledgerText(l combat.Ledger) string {
	parts := make([]string, 0, len(l))
	for _, e := range l {
		parts = append(parts, fmt.Sprintf("%s %d (%dt)", e.Effect, e.Power, e.Duration))
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "~"
}
