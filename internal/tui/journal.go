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

type entriesLoadedMsg struct {
	entries []ledger.JournalEntry
	err     error
}

// entryVoidRequestMsg is sent when the user confirms voiding in the journal list.
type entryVoidRequestMsg struct {
	id string
}

type entryVoidedMsg struct {
	id  string
	err error
}

type entryListModel struct {
	entries     []ledger.JournalEntry
	cursor      int
	loading     bool
	err         error
	width       int
	height      int
	confirmVoid bool
	voidTarget  string
}

func (m *entryListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		entries, err := c.ListEntries(context.Background(), "", "")
		return entriesLoadedMsg{entries: entries, err: err}
	}
}

func (m entryListModel) update(msg tea.Msg) (entryListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case entriesLoadedMsg:
		m.loading = false
		m.entries = msg.entries
		m.err = msg.err

	case entryVoidedMsg:
		m.confirmVoid = false
		m.voidTarget = ""
		if msg.err != nil {
			m.err = msg.err
		}

	case tea.KeyMsg:
		if m.confirmVoid {
			switch msg.String() {
			case "y", "Y":
				id := m.voidTarget
				m.confirmVoid = false
				return m, func() tea.Msg {
					return entryVoidRequestMsg{id: id}
				}
			default:
				m.confirmVoid = false
				m.voidTarget = ""
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Void):
			if id := m.selectedID(); id != "" {
				m.confirmVoid = true
				m.voidTarget = id
				m.err = nil
			}
		}
	}
	return m, nil
}

func (m *entryListModel) selectedID() string {
	if m.cursor >= 0 && m.cursor < len(m.entries) {
		return m.entries[m.cursor].ID
	}
	return ""
}

func (m *entryListModel) view() string {
	if m.loading {
		return "Loading journal..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.entries) == 0 {
		return dimStyle.Render("No journal entries.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Journal"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-36s %-17s %-8s %-6s %s", "ID", "DATE", "STATUS", "LINES", "DESCRIPTION")
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

	for i := start; i < len(m.entries) && i < start+maxRows; i++ {
		e := m.entries[i]
		desc := e.Description
		if len(desc) > 30 {
			desc = desc[:28] + ".."
		}
		idShort := e.ID
		if len(idShort) > 34 {
			idShort = idShort[:34] + ".."
		}

		line := fmt.Sprintf("  %-36s %-17s %-8s %-6d %s",
			idShort,
			e.Date.Format("2006-01-02 15:04"),
			e.Status,
			len(e.Lines),
			desc,
		)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else if e.Status == ledger.StatusVoided {
			b.WriteString(dimStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	if m.confirmVoid {
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("  Void entry %q? (y/n)", m.voidTarget)))
	} else {
		b.WriteString(fmt.Sprintf("\n  %d entries", len(m.entries)))
	}
	return b.String()
}

type entryDetailLoadedMsg struct {
	entry *ledger.JournalEntry
	err   error
}

type entryDetailModel struct {
	entry   *ledger.JournalEntry
	loading bool
	err     error
	width   int
}

func (m *entryDetailModel) init(c *client.Client, id string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		entry, err := c.GetEntry(context.Background(), id)
		return entryDetailLoadedMsg{entry: entry, err: err}
	}
}

func (m entryDetailModel) update(msg tea.Msg) (entryDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case entryDetailLoadedMsg:
		m.loading = false
		m.entry = msg.entry
		m.err = msg.err
	}
	return m, nil
}

func (m *entryDetailModel) view() string {
	if m.loading {
		return "Loading entry..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.entry == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Entry: %s", m.entry.ID)))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Description:"), m.entry.Description))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Date:"), m.entry.Date.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Status:"), m.entry.Status))
	if m.entry.Actor != "" {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Actor:"), m.entry.Actor))
	}
	b.WriteString("\n")

	header := fmt.Sprintf("  %-4s %-10s %15s %15s %-5s %s", "TYPE", "ACCOUNT", "DEBIT", "CREDIT", "CCY", "PARTY")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, l := range m.entry.Lines {
		debit := ""
		credit := ""
		if l.Direction == ledger.Debit {
			debit = ledger.FormatAmount(l.Amount, l.Currency)
		} else {
			credit = ledger.FormatAmount(l.Amount, l.Currency)
		}

		dir := "DR"
		if l.Direction == ledger.Credit {
			dir = "CR"
		}
		line := fmt.Sprintf("  %-4s %-10s %15s %15s %-5s %s",
			dir, l.AccountCode, debit, credit, l.Currency, l.ThirdPartyID)
		if l.Direction == ledger.Debit {
			b.WriteString(debitStyle.Render(line))
		} else {
			b.WriteString(creditStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + dimStyle.Render("  Press ESC to go back"))
	return b.String()
}
