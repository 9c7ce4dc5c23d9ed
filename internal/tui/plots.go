package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/campolibro/campolibro/internal/client"
	"github.com/campolibro/campolibro/internal/geo"
)

type plotsLoadedMsg struct {
	plots []geo.Plot
	err   error
}

type plotListModel struct {
	plots   []geo.Plot
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

func (m *plotListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		plots, err := c.ListPlots(context.Background(), "")
		return plotsLoadedMsg{plots: plots, err: err}
	}
}

func (m plotListModel) update(msg tea.Msg) (plotListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case plotsLoadedMsg:
		m.loading = false
		m.plots = msg.plots
		m.err = msg.err

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.plots)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m *plotListModel) selectedID() string {
	if m.cursor >= 0 && m.cursor < len(m.plots) {
		return m.plots[m.cursor].ID
	}
	return ""
}

func (m *plotListModel) view() string {
	if m.loading {
		return "Loading plots..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.plots) == 0 {
		return dimStyle.Render("No plots registered.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Plots"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-12s %-26s %-12s %12s", "CODE", "NAME", "FIELD", "AREA (HA)")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 4
	if maxRows < 1 {
		maxRows = 10
	}

	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}

	for i := start; i < len(m.plots) && i < start+maxRows; i++ {
		p := m.plots[i]
		name := p.Name
		if len(name) > 24 {
			name = name[:24] + ".."
		}

		line := fmt.Sprintf("  %-12s %-26s %-12s %12.2f", p.Code, name, p.FieldID, p.AreaHectares)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n  %d plots", len(m.plots)))
	return b.String()
}

type plotDetailLoadedMsg struct {
	plot     *geo.Plot
	versions []client.GeometryVersion
	err      error
}

type plotDetailModel struct {
	plot     *geo.Plot
	versions []client.GeometryVersion
	loading  bool
	err      error
	width    int
}

func (m *plotDetailModel) init(c *client.Client, id string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		plot, err := c.GetPlot(context.Background(), id)
		if err != nil {
			return plotDetailLoadedMsg{err: err}
		}
		versions, err := c.ListGeometryVersions(context.Background(), id)
		return plotDetailLoadedMsg{plot: plot, versions: versions, err: err}
	}
}

func (m plotDetailModel) update(msg tea.Msg) (plotDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case plotDetailLoadedMsg:
		m.loading = false
		m.plot = msg.plot
		m.versions = msg.versions
		m.err = msg.err
	}
	return m, nil
}

func (m *plotDetailModel) view() string {
	if m.loading {
		return "Loading plot..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.plot == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Plot %s", m.plot.Code)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Name:"), m.plot.Name))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Field:"), m.plot.FieldID))
	b.WriteString(fmt.Sprintf("%s %.2f ha\n", labelStyle.Render("Area:"), m.plot.AreaHectares))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-8s %12s %-17s %-14s %s", "VERSION", "AREA (HA)", "CHANGED", "BY", "REASON")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, v := range m.versions {
		b.WriteString(fmt.Sprintf("  %-8d %12.2f %-17s %-14s %s\n",
			v.Version, v.AreaHectares,
			v.ChangedAt.Format("2006-01-02 15:04"),
			v.ChangedBy, v.Reason))
	}

	b.WriteString("\n" + dimStyle.Render("  Press ESC to go back"))
	return b.String()
}
