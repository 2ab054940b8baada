package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Border lipgloss.Style
	Value  lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Border: lipgloss.NewStyle().Foreground(t.Primary),
		Value:  lipgloss.NewStyle(),
	}
}

// Row is a single key/value line of a table.
type Row struct {
	Key   string
	Value string
}

// Flatten turns a generic value (as decoded by encoding/json) into rows
// keyed by dotted paths, sorted by key. Slice elements use their index as
// the path segment.
func Flatten(v any) []Row {
	var rows []Row
	flatten("", v, &rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

func flatten(prefix string, v any, rows *[]Row) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	switch x := v.(type) {
	case map[string]any:
		if len(x) == 0 {
			*rows = append(*rows, Row{Key: prefix, Value: "{}"})
		}
		for k, e := range x {
			flatten(join(k), e, rows)
		}
	case []any:
		if len(x) == 0 {
			*rows = append(*rows, Row{Key: prefix, Value: "[]"})
		}
		for i, e := range x {
			flatten(join(strconv.Itoa(i)), e, rows)
		}
	case nil:
		*rows = append(*rows, Row{Key: prefix, Value: "-"})
	case float64:
		*rows = append(*rows, Row{Key: prefix, Value: strconv.FormatFloat(x, 'f', -1, 64)})
	default:
		*rows = append(*rows, Row{Key: prefix, Value: fmt.Sprint(x)})
	}
}

// RenderTable renders rows as a bordered two-column table.
func RenderTable(s Styles, rows []Row) string {
	keyWidth, valWidth := 0, 0
	for _, r := range rows {
		keyWidth = max(keyWidth, lipgloss.Width(r.Key))
		valWidth = max(valWidth, lipgloss.Width(r.Value))
	}

	bc := s.Border
	var lines []string
	lines = append(lines, bc.Render("╭"+strings.Repeat("─", keyWidth+2)+"┬"+strings.Repeat("─", valWidth+2)+"╮"))
	for _, r := range rows {
		key := s.Label.Render(r.Key) + strings.Repeat(" ", keyWidth-lipgloss.Width(r.Key))
		val := s.Value.Render(r.Value) + strings.Repeat(" ", valWidth-lipgloss.Width(r.Value))
		lines = append(lines, bc.Render("│")+" "+key+" "+bc.Render("│")+" "+val+" "+bc.Render("│"))
	}
	lines = append(lines, bc.Render("╰"+strings.Repeat("─", keyWidth+2)+"┴"+strings.Repeat("─", valWidth+2)+"╯"))
	return strings.Join(lines, "\n")
}
