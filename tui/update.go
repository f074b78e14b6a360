package tui

import (
	"socialfeed/feedview"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case pageLoadedMsg:
		page := feedview.Page{
			Number:     msg.number,
			Size:       msg.resp.PageSize,
			Posts:      msg.resp.Items,
			TotalCount: msg.resp.TotalCount,
		}
		if m.view.ApplyFetch(msg.gen, page) {
			m.pager.TotalCount = msg.resp.TotalCount
			m.err = nil
		}
		return m, nil

	case pageErrorMsg:
		if m.view.FailFetch(msg.gen) {
			m.err = msg.err
		}
		return m, nil

	case eventMsg:
		m.lastEvent = msg.ev.Kind
		cmds := []tea.Cmd{m.waitForEvent()}
		if m.view.Apply(msg.ev) == feedview.Refetch {
			cmds = append(cmds, m.fetch(m.pager.Current))
		} else {
			m.pager.TotalCount = m.view.Snapshot().TotalCount
		}
		return m, tea.Batch(cmds...)

	case streamClosedMsg:
		m.live = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetch(m.pager.Current)

	case key.Matches(msg, m.keys.Prev):
		if m.pager.Prev() {
			return m, m.fetch(m.pager.Current)
		}

	case key.Matches(msg, m.keys.Next):
		if m.pager.Next() {
			return m, m.fetch(m.pager.Current)
		}

	case key.Matches(msg, m.keys.Jump):
		n := int(msg.String()[0] - '0')
		if n == 0 {
			n = 10
		}
		m.pager.GoTo(n)
		return m, m.fetch(n)
	}
	return m, nil
}
