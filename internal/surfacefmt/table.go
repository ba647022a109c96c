package surfacefmt

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// TableOpts controls Table rendering.
type TableOpts struct {
	Color bool
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	exportedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var tableHeader = []string{"SELECTOR", "SIGNATURE", "RETURNS", "MUTABILITY", "ORIGIN"}

// Table renders one block per module: a title line, then one row per
// selector. Columns are padded by display width.
func Table(w io.Writer, docs []Document, opts TableOpts) error {
	style := func(s lipgloss.Style, text string) string {
		if !opts.Color {
			return text
		}
		return s.Render(text)
	}
	var sb strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		title := doc.Module
		if len(doc.Implements) > 0 {
			title += " implements " + strings.Join(doc.Implements, ", ")
		}
		sb.WriteString(style(titleStyle, title))
		sb.WriteByte('\n')
		for _, g := range doc.Grants {
			sb.WriteString(style(mutedStyle, "  "+g.Mode+": "+g.Module))
			sb.WriteByte('\n')
		}

		rows := [][]string{tableHeader}
		for _, m := range doc.Methods {
			origin := m.Origin
			if m.Via != "" {
				origin += " (" + m.Via + ")"
			}
			if len(m.Selectors) == 0 {
				rows = append(rows, []string{"-", m.Name + "()", m.Output, m.StateMutability, origin})
				continue
			}
			for _, sel := range m.Selectors {
				rows = append(rows, []string{sel.ID, sel.Signature, m.Output, m.StateMutability, origin})
			}
		}
		widths := columnWidths(rows)
		for r, row := range rows {
			var line strings.Builder
			line.WriteString("  ")
			for c, cell := range row {
				if c == len(row)-1 {
					line.WriteString(cell)
					break
				}
				line.WriteString(runewidth.FillRight(cell, widths[c]+2))
			}
			text := strings.TrimRight(line.String(), " ")
			switch {
			case r == 0:
				text = style(headerStyle, text)
			case strings.HasPrefix(row[4], "exported"):
				text = style(exportedStyle, text)
			}
			sb.WriteString(text)
			sb.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func columnWidths(rows [][]string) []int {
	widths := make([]int, len(tableHeader))
	for _, row := range rows {
		for c, cell := range row {
			widths[c] = max(widths[c], runewidth.StringWidth(cell))
		}
	}
	return widths
}
