package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/campolibro/campolibro/internal/client"
)

type mode int

const (
	modeAccountList mode = iota
	modeAccountDetail
	modeEntryList
	modeEntryDetail
	modePartyList
	modePlotList
	modePlotDetail
)

var tabModes = []mode{modeAccountList, modeEntryList, modePartyList, modePlotList}

func tabLabel(m mode) string {
	switch m {
	case modeAccountList:
		return "Accounts"
	case modeEntryList:
		return "Journal"
	case modePartyList:
		return "Parties"
	case modePlotList:
		return "Plots"
	default:
		return ""
	}
}

type App struct {
	client        *client.Client
	mode          mode
	tabIndex      int
	width, height int
	err           error
	statusMsg     string

	accountList   accountListModel
	accountDetail accountDetailModel
	entryList     entryListModel
	entryDetail   entryDetailModel
	partyList     partyListModel
	plotList      plotListModel
	plotDetail    plotDetailModel
}

func NewApp(c *client.Client) *App {
	return &App{
		client:   c,
		mode:     modeAccountList,
		tabIndex: 0,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.accountList.init(a.client),
		a.entryList.init(a.client),
		a.partyList.init(a.client),
		a.plotList.init(a.client),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.accountList.width = msg.Width
		a.accountList.height = msg.Height - 6
		a.entryList.width = msg.Width
		a.entryList.height = msg.Height - 6
		a.partyList.width = msg.Width
		a.partyList.height = msg.Height - 6
		a.plotList.width = msg.Width
		a.plotList.height = msg.Height - 6
		a.accountDetail.width = msg.Width
		a.entryDetail.width = msg.Width
		a.plotDetail.width = msg.Width
		return a, nil
	}

	// Route data-loaded messages to the owning sub-model regardless of active
	// mode; Init fires all loads concurrently.
	switch typedMsg := msg.(type) {
	case accountsLoadedMsg:
		var cmd tea.Cmd
		a.accountList, cmd = a.accountList.update(msg)
		return a, cmd
	case entriesLoadedMsg:
		var cmd tea.Cmd
		a.entryList, cmd = a.entryList.update(msg)
		return a, cmd
	case partiesLoadedMsg:
		var cmd tea.Cmd
		a.partyList, cmd = a.partyList.update(msg)
		return a, cmd
	case plotsLoadedMsg:
		var cmd tea.Cmd
		a.plotList, cmd = a.plotList.update(msg)
		return a, cmd
	case accountDetailLoadedMsg:
		var cmd tea.Cmd
		a.accountDetail, cmd = a.accountDetail.update(msg)
		return a, cmd
	case entryDetailLoadedMsg:
		var cmd tea.Cmd
		a.entryDetail, cmd = a.entryDetail.update(msg)
		return a, cmd
	case plotDetailLoadedMsg:
		var cmd tea.Cmd
		a.plotDetail, cmd = a.plotDetail.update(msg)
		return a, cmd
	case entryVoidRequestMsg:
		id := typedMsg.id
		return a, func() tea.Msg {
			_, err := a.client.VoidEntry(context.Background(), id)
			return entryVoidedMsg{id: id, err: err}
		}
	case entryVoidedMsg:
		if typedMsg.err != nil {
			a.entryList, _ = a.entryList.update(msg)
			return a, nil
		}
		a.statusMsg = "Entry " + typedMsg.id + " voided"
		return a, tea.Batch(
			a.entryList.init(a.client),
			a.partyList.init(a.client),
		)
	}

	// Journal list owns keys while the void confirmation is up.
	if a.mode == modeEntryList && a.entryList.confirmVoid {
		var cmd tea.Cmd
		a.entryList, cmd = a.entryList.update(msg)
		return a, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit

		case key.Matches(msg, keys.Tab):
			a.tabIndex = (a.tabIndex + 1) % len(tabModes)
			a.mode = tabModes[a.tabIndex]
			a.statusMsg = ""
			return a, a.refreshTab()

		case key.Matches(msg, keys.ShiftTab):
			a.tabIndex = (a.tabIndex - 1 + len(tabModes)) % len(tabModes)
			a.mode = tabModes[a.tabIndex]
			a.statusMsg = ""
			return a, a.refreshTab()

		case key.Matches(msg, keys.Refresh):
			return a, a.refreshTab()

		case key.Matches(msg, keys.Escape):
			switch a.mode {
			case modeAccountDetail:
				a.mode = modeAccountList
			case modeEntryDetail:
				a.mode = modeEntryList
			case modePlotDetail:
				a.mode = modePlotList
			}
			return a, nil

		case key.Matches(msg, keys.Enter):
			switch a.mode {
			case modeAccountList:
				if code := a.accountList.selectedCode(); code != "" {
					a.mode = modeAccountDetail
					return a, a.accountDetail.init(a.client, code)
				}
				return a, nil
			case modeEntryList:
				if id := a.entryList.selectedID(); id != "" {
					a.mode = modeEntryDetail
					return a, a.entryDetail.init(a.client, id)
				}
				return a, nil
			case modePlotList:
				if id := a.plotList.selectedID(); id != "" {
					a.mode = modePlotDetail
					return a, a.plotDetail.init(a.client, id)
				}
				return a, nil
			}
		}
	}

	// Delegate update to active sub-model
	var cmd tea.Cmd
	switch a.mode {
	case modeAccountList:
		a.accountList, cmd = a.accountList.update(msg)
	case modeAccountDetail:
		a.accountDetail, cmd = a.accountDetail.update(msg)
	case modeEntryList:
		a.entryList, cmd = a.entryList.update(msg)
	case modeEntryDetail:
		a.entryDetail, cmd = a.entryDetail.update(msg)
	case modePartyList:
		a.partyList, cmd = a.partyList.update(msg)
	case modePlotList:
		a.plotList, cmd = a.plotList.update(msg)
	case modePlotDetail:
		a.plotDetail, cmd = a.plotDetail.update(msg)
	}
	return a, cmd
}

func (a *App) refreshTab() tea.Cmd {
	switch a.mode {
	case modeAccountList:
		return a.accountList.init(a.client)
	case modeEntryList:
		return a.entryList.init(a.client)
	case modePartyList:
		return a.partyList.init(a.client)
	case modePlotList:
		return a.plotList.init(a.client)
	}
	return nil
}

func (a *App) View() string {
	// Tab bar
	tabs := ""
	for i, m := range tabModes {
		label := tabLabel(m)
		if i == a.tabIndex {
			tabs += activeTabStyle.Render(label)
		} else {
			tabs += inactiveTabStyle.Render(label)
		}
		if i < len(tabModes)-1 {
			tabs += " "
		}
	}

	// Content
	var content string
	switch a.mode {
	case modeAccountList:
		content = a.accountList.view()
	case modeAccountDetail:
		content = a.accountDetail.view()
	case modeEntryList:
		content = a.entryList.view()
	case modeEntryDetail:
		content = a.entryDetail.view()
	case modePartyList:
		content = a.partyList.view()
	case modePlotList:
		content = a.plotList.view()
	case modePlotDetail:
		content = a.plotDetail.view()
	}

	// Status bar
	status := ""
	if a.statusMsg != "" {
		status = successStyle.Render(a.statusMsg)
	}
	if a.err != nil {
		status = errorStyle.Render(a.err.Error())
	}

	helpText := dimStyle.Render("tab:switch  enter:select  esc:back  v:void entry  r:refresh  q:quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		"",
		content,
		"",
		status,
		helpText,
	)
}
