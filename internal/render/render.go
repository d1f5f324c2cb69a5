// Package render prints tabular listings. The boxed table uses lipgloss;
// Plain is the line-per-row fallback with the same information.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Renderer writes a header row and data rows to w.
type Renderer interface {
	Render(w io.Writer, header []string, rows [][]string) error
}

// Plain renders each row as "first. second — third — fourth". Empty trailing
// cells are skipped, so a row without notes has no dangling separator. The
// header is not printed.
type Plain struct{}

func (Plain) Render(w io.Writer, _ []string, rows [][]string) error {
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		var b strings.Builder
		b.WriteString(row[0])
		b.WriteString(".")
		for i, cell := range row[1:] {
			if cell == "" && i > 0 {
				continue
			}
			if i == 0 {
				b.WriteString(" ")
			} else {
				b.WriteString(" — ")
			}
			b.WriteString(cell)
		}
		if _, err := fmt.Fprintln(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Table renders a bordered table.
type Table struct{}

func (Table) Render(w io.Writer, header []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(header...).
		Rows(rows...)

	_, err := fmt.Fprintln(w, t.String())
	return err
}

// New picks the renderer for the given setting.
func New(useTable bool) Renderer {
	if useTable {
		return Table{}
	}
	return Plain{}
}
