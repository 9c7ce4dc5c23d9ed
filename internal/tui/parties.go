package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/campolibro/campolibro/internal/client"
	"github.com/campolibro/campolibro/internal/ledger"
)

type partiesLoadedMsg struct {
	parties []ledger.ThirdParty
	totals  *ledger.PartyTotals
	err     error
}

type partyListModel struct {
	parties []ledger.ThirdParty
	totals  *ledger.PartyTotals
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

func (m *partyListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		parties, err := c.ListParties(context.Background())
		if err != nil {
			return partiesLoadedMsg{err: err}
		}
		totals, err := c.PartyTotals(context.Background())
		return partiesLoadedMsg{parties: parties, totals: totals, err: err}
	}
}

func (m partyListModel) update(msg tea.Msg) (partyListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case partiesLoadedMsg:
		m.loading = false
		m.parties = msg.parties
		m.totals = msg.totals
		m.err = msg.err

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.parties)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m *partyListModel) view() string {
	if m.loading {
		return "Loading parties..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.parties) == 0 {
		return dimStyle.Render("No third parties.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Third Parties"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-16s %-28s %-10s %14s %14s", "ID", "NAME", "KIND", "RECEIVABLE", "PAYABLE")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 5
	if maxRows < 1 {
		maxRows = 10
	}

	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}

	for i := start; i < len(m.parties) && i < start+maxRows; i++ {
		p := m.parties[i]
		name := p.Name
		if len(name) > 26 {
			name = name[:26] + ".."
		}

		line := fmt.Sprintf("  %-16s %-28s %-10s %14s %14s",
			p.ID, name, p.Kind,
			p.ReceivableBalance.StringFixed(2),
			p.PayableBalance.StringFixed(2),
		)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	if m.totals != nil {
		b.WriteString(fmt.Sprintf("\n  Totals: receivable %s, payable %s",
			m.totals.TotalReceivable.StringFixed(2),
			m.totals.TotalPayable.StringFixed(2)))
	}
	return b.String()
}
