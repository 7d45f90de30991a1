package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/stratumviz/stratum/pkg/config"
	"github.com/stratumviz/stratum/pkg/scenegraph"
)

// List styles
var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// LayerListModel - Interactive layer visibility selection
// =============================================================================

// layerRow is one selectable layer in the picker.
type layerRow struct {
	id      scenegraph.LayerID
	dynamic bool
	nodes   int
	edges   int
	visible bool
}

// LayerListModel is the bubbletea model for toggling layer visibility
// before a render.
type LayerListModel struct {
	Rows      []layerRow
	Cursor    int
	Confirmed bool
}

// NewLayerListModel creates a layer picker for the scene's layers, seeded
// with the visibility flags from the config.
func NewLayerListModel(cfg *config.Config, g *scenegraph.Graph) LayerListModel {
	var rows []layerRow
	for _, l := range g.Layers() {
		rows = append(rows, layerRow{
			id:      l.ID(),
			nodes:   l.NumNodes(),
			edges:   l.NumEdges(),
			visible: layerVisible(cfg.Layers, l.ID()),
		})
	}
	for _, l := range g.DynamicLayers() {
		rows = append(rows, layerRow{
			id:      l.ID(),
			dynamic: true,
			nodes:   l.NumNodes(),
			visible: dynamicVisible(cfg.DynamicLayers, l.ID()),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].dynamic != rows[j].dynamic {
			return !rows[i].dynamic
		}
		return rows[i].id < rows[j].id
	})
	return LayerListModel{Rows: rows}
}

func layerVisible(layers map[string]config.LayerSection, id scenegraph.LayerID) bool {
	if l, ok := layers[strconv.Itoa(int(id))]; ok {
		return l.Visualize
	}
	return true
}

func dynamicVisible(layers map[string]config.DynamicLayerSection, id scenegraph.LayerID) bool {
	if l, ok := layers[strconv.Itoa(int(id))]; ok {
		return l.Visualize
	}
	return true
}

func (m LayerListModel) Init() tea.Cmd {
	return nil
}

func (m LayerListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
			}
		case " ":
			if len(m.Rows) > 0 {
				m.Rows[m.Cursor].visible = !m.Rows[m.Cursor].visible
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m LayerListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Visible Layers"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  ⏎ render  q cancel"))
	b.WriteString("\n\n")

	rows := [][]string{}
	for i, r := range m.Rows {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		check := " "
		if r.visible {
			check = "✓"
		}

		kind := "static"
		if r.dynamic {
			kind = "dynamic"
		}

		edges := "—"
		if !r.dynamic {
			edges = strconv.Itoa(r.edges)
		}

		rows = append(rows, []string{
			cursor, check, strconv.Itoa(int(r.id)), kind,
			strconv.Itoa(r.nodes), edges,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Layer", "Kind", "Nodes", "Edges").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			r := m.Rows[row]
			isCurrent := row == m.Cursor

			base := lipgloss.NewStyle()
			if isCurrent {
				if r.visible {
					return base.Foreground(colorGreen).Bold(true)
				}
				return base.Foreground(colorDim).Bold(true)
			}
			if r.visible {
				return base.Foreground(colorGreen)
			}
			return base.Foreground(colorDim)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}

// pickLayers runs the interactive layer picker and writes the chosen
// visibility flags back into the config. Cancelling keeps the config
// unchanged.
func pickLayers(cfg *config.Config, g *scenegraph.Graph) error {
	model := NewLayerListModel(cfg, g)
	if len(model.Rows) == 0 {
		return nil
	}

	p := tea.NewProgram(model)
	out, err := p.Run()
	if err != nil {
		return err
	}

	final, ok := out.(LayerListModel)
	if !ok || !final.Confirmed {
		return nil
	}

	for _, r := range final.Rows {
		key := strconv.Itoa(int(r.id))
		if r.dynamic {
			l := cfg.DynamicLayers[key]
			l.Visualize = r.visible
			cfg.DynamicLayers[key] = l
		} else {
			l := cfg.Layers[key]
			l.Visualize = r.visible
			cfg.Layers[key] = l
		}
	}
	return nil
}
