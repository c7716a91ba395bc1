// Package overlay draws one rendered block on top of another without
// clearing what is underneath.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position selects the anchor of the foreground block.
type Position int

const (
	// Center places the block in the middle of the viewport.
	Center Position = iota
	// Bottom places the block at the bottom center, PadY rows above the edge.
	Bottom
	// Absolute places the top-left corner of the block at (X, Y).
	Absolute
)

// Config controls placement.
type Config struct {
	Width    int
	Height   int
	Position Position
	PadY     int
	// X and Y are used with Absolute.
	X, Y int
}

// Place renders fg over bg. Both may contain ANSI styling. Parts of fg that
// fall outside the viewport are clipped.
func Place(cfg Config, fg, bg string) string {
	rows := strings.Split(bg, "\n")
	for len(rows) < cfg.Height {
		rows = append(rows, strings.Repeat(" ", cfg.Width))
	}

	fgRows := strings.Split(fg, "\n")
	x, y := origin(cfg, lipgloss.Width(fg), len(fgRows))

	for i, line := range fgRows {
		row := y + i
		if row < 0 {
			continue
		}
		if row >= len(rows) {
			break
		}
		if cfg.Width > 0 {
			line = ansi.Truncate(line, cfg.Width-x, "")
		}
		rows[row] = splice(rows[row], line, x)
	}
	return strings.Join(rows, "\n")
}

// splice writes line into row starting at column x.
func splice(row, line string, x int) string {
	left := ansi.Truncate(row, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	end := x + ansi.StringWidth(line)
	var right string
	if end < ansi.StringWidth(row) {
		right = ansi.TruncateLeft(row, end, "")
	}
	return left + line + right
}

func origin(cfg Config, w, h int) (x, y int) {
	switch cfg.Position {
	case Absolute:
		x, y = cfg.X, cfg.Y
	case Bottom:
		x = (cfg.Width - w) / 2
		y = cfg.Height - h - cfg.PadY
	default:
		x = (cfg.Width - w) / 2
		y = (cfg.Height - h) / 2
	}
	return max(x, 0), max(y, 0)
}
