// Package report renders a finished battle as a one page PDF.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/samdwyer/cardclash/internal/store"
)

const (
	pageW     = 595
	margin    = 48
	titleSize = 22
	labelSize = 11
	rowHeight = 22
	labelW    = 170
)

// Render writes the PDF report for rec to w.
func Render(w io.Writer, rec store.BattleRecord) error {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Battle report "+rec.ID, true)
	pdf.AddPage()

	// Banner in the outcome colour
	r, g, b := outcomeColor(rec.Outcome)
	pdf.SetFillColor(r, g, b)
	pdf.Rect(0, 0, pageW, 96, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(margin, 30)
	pdf.CellFormat(pageW-2*margin, 24, headline(rec), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", labelSize)
	pdf.SetXY(margin, 58)
	pdf.CellFormat(pageW-2*margin, 14, rec.CreatedAt.Format("2 January 2006 15:04 MST"), "", 0, "L", false, 0, "")

	pdf.SetTextColor(40, 40, 40)
	pdf.SetDrawColor(200, 200, 200)
	y := 130.0
	for _, row := range rows(rec) {
		pdf.SetXY(margin, y)
		pdf.SetFont("Helvetica", "B", labelSize)
		pdf.CellFormat(labelW, rowHeight, row[0], "B", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", labelSize)
		pdf.CellFormat(pageW-2*margin-labelW, rowHeight, row[1], "B", 0, "L", false, 0, "")
		y += rowHeight
	}

	pdf.SetXY(margin, y+24)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(pageW-2*margin, 12, "Battle "+rec.ID, "", 0, "L", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return pdf.Output(w)
}

// Bytes renders the report into memory.
func Bytes(rec store.BattleRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func headline(rec store.BattleRecord) string {
	enemy := rec.EnemyName
	if enemy == "" {
		enemy = "the enemy"
	}
	switch rec.Outcome {
	case "win":
		return "Victory over " + enemy
	case "lose":
		return "Defeated by " + enemy
	default:
		return "Battle against " + enemy
	}
}

func rows(rec store.BattleRecord) [][2]string {
	reward := rec.RewardCard
	if reward == "" {
		reward = "none"
	}
	return [][2]string{
		{"Outcome", strings.ToUpper(rec.Outcome)},
		{"Enemy level", fmt.Sprintf("%d", rec.Level)},
		{"Cards played", fmt.Sprintf("%d", rec.Turns)},
		{"Health remaining", fmt.Sprintf("%d", rec.PlayerHealth)},
		{"Enemy health remaining", fmt.Sprintf("%d", rec.EnemyHealth)},
		{"Experience gained", fmt.Sprintf("%d", rec.ExperienceGained)},
		{"Reward card", reward},
	}
}

func outcomeColor(outcome string) (int, int, int) {
	switch outcome {
	case "win":
		return 46, 125, 50
	case "lose":
		return 183, 28, 28
	default:
		return 69, 90, 100
	}
}
