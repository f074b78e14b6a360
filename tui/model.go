// Package tui is the terminal feed viewer: one page of posts at a time, kept live by change events.
package tui

import (
	"context"
	"time"

	"socialfeed/feed"
	"socialfeed/feedview"
	"socialfeed/notifier"
	"socialfeed/pagination"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const fetchTimeout = 15 * time.Second

// PageFetcher loads one feed page.
type PageFetcher interface {
	FetchPage(ctx context.Context, page int) (*feed.PostsResponse, error)
}

// --- Messages ---

type pageLoadedMsg struct {
	gen    uint64
	number int
	resp   *feed.PostsResponse
}

type pageErrorMsg struct {
	gen uint64
	err error
}

type eventMsg struct {
	ev notifier.Event
}

type streamClosedMsg struct{}

// --- Model ---

type Model struct {
	fetcher PageFetcher
	events  <-chan notifier.Event

	view  *feedview.Model
	pager *pagination.Controller

	keys      KeyMap
	spinner   spinner.Model
	width     int
	err       error
	live      bool
	lastEvent notifier.Kind
}

// New builds the viewer. events may be nil, in which case the feed only changes on navigation or refresh.
func New(fetcher PageFetcher, events <-chan notifier.Event, pageSize, startPage int) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6600"))

	pager := pagination.New(pageSize)
	if startPage > 1 {
		pager.GoTo(startPage)
	}

	return Model{
		fetcher: fetcher,
		events:  events,
		view:    feedview.NewModel(pager.PageSize),
		pager:   pager,
		keys:    DefaultKeyMap(),
		spinner: s,
		width:   80,
		live:    events != nil,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetch(m.pager.Current),
		m.waitForEvent(),
		m.spinner.Tick,
	)
}

func (m Model) fetch(number int) tea.Cmd {
	gen := m.view.BeginFetch(number)
	fetcher := m.fetcher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		resp, err := fetcher.FetchPage(ctx, number)
		if err != nil {
			return pageErrorMsg{gen: gen, err: err}
		}
		return pageLoadedMsg{gen: gen, number: number, resp: resp}
	}
}

func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg{ev: ev}
	}
}
