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

type accountsLoadedMsg struct {
	accounts []ledger.Account
	err      error
}

type accountListModel struct {
	accounts []ledger.Account
	cursor   int
	loading  bool
	err      error
	width    int
	height   int
}

func (m *accountListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		accounts, err := c.ListAccounts(context.Background(), "", nil)
		return accountsLoadedMsg{accounts: accounts, err: err}
	}
}

func (m accountListModel) update(msg tea.Msg) (accountListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsLoadedMsg:
		m.loading = false
		m.accounts = msg.accounts
		m.err = msg.err

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.accounts)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m *accountListModel) selectedCode() string {
	if m.cursor >= 0 && m.cursor < len(m.accounts) {
		return m.accounts[m.cursor].Code
	}
	return ""
}

func (m *accountListModel) view() string {
	if m.loading {
		return "Loading accounts..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.accounts) == 0 {
		return dimStyle.Render("No accounts found.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Chart of Accounts"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-10s %-32s %-10s %-8s %s", "CODE", "NAME", "KIND", "NORMAL", "POSTABLE")
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

	for i := start; i < len(m.accounts) && i < start+maxRows; i++ {
		a := m.accounts[i]
		name := a.Name
		if len(name) > 30 {
			name = name[:30] + ".."
		}

		postable := ""
		if a.Postable {
			postable = "yes"
		}
		line := fmt.Sprintf("  %-10s %-32s %-10s %-8s %s",
			a.Code, name, a.Kind, ledger.NormalBalance(a.Kind), postable)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n  %d accounts", len(m.accounts)))
	return b.String()
}

type accountDetailLoadedMsg struct {
	account  *ledger.Account
	balances *client.BalanceResponse
	err      error
}

type accountDetailModel struct {
	account  *ledger.Account
	balances *client.BalanceResponse
	loading  bool
	err      error
	width    int
}

func (m *accountDetailModel) init(c *client.Client, code string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		acct, err := c.GetAccount(context.Background(), code)
		if err != nil {
			return accountDetailLoadedMsg{err: err}
		}
		var balances *client.BalanceResponse
		if acct.Postable {
			balances, err = c.GetAccountBalance(context.Background(), code)
			if err != nil {
				return accountDetailLoadedMsg{err: err}
			}
		}
		return accountDetailLoadedMsg{account: acct, balances: balances}
	}
}

func (m accountDetailModel) update(msg tea.Msg) (accountDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountDetailLoadedMsg:
		m.loading = false
		m.account = msg.account
		m.balances = msg.balances
		m.err = msg.err
	}
	return m, nil
}

func (m *accountDetailModel) view() string {
	if m.loading {
		return "Loading account..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.account == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Account %s", m.account.Code)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Name:"), m.account.Name))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Kind:"), m.account.Kind))
	b.WriteString(fmt.Sprintf("%s %d\n", labelStyle.Render("Level:"), m.account.Level))
	b.WriteString(fmt.Sprintf("%s %v\n", labelStyle.Render("Postable:"), m.account.Postable))
	if m.account.Currency != "" {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Currency:"), m.account.Currency))
	}

	if m.balances != nil {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("  BALANCE"))
		b.WriteString("\n")
		if len(m.balances.Balances) == 0 {
			b.WriteString(dimStyle.Render("  No posted lines."))
			b.WriteString("\n")
		}
		for _, bal := range m.balances.Balances {
			b.WriteString(fmt.Sprintf("  %s %s\n", ledger.FormatAmount(bal.Balance, bal.Currency), bal.Currency))
		}
	}

	b.WriteString("\n" + dimStyle.Render("  Press ESC to go back"))
	return b.String()
}
