package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"socialfeed/feed"
	"socialfeed/models"
	"socialfeed/notifier"

	tea "github.com/charmbracelet/bubbletea"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubFetcher struct {
	total int
	size  int
	err   error
	calls []int
}

func (s *stubFetcher) FetchPage(_ context.Context, page int) (*feed.PostsResponse, error) {
	s.calls = append(s.calls, page)
	if s.err != nil {
		return nil, s.err
	}
	resp := &feed.PostsResponse{TotalCount: int64(s.total), Page: page, PageSize: s.size, Items: []models.Post{}}
	for i := (page - 1) * s.size; i < page*s.size && i < s.total; i++ {
		resp.Items = append(resp.Items, makePost(fmt.Sprintf("post %d", i)))
	}
	return resp, nil
}

func makePost(content string) models.Post {
	return models.Post{
		ID:       primitive.NewObjectID(),
		Content:  content,
		PostedBy: models.Author{ID: primitive.NewObjectID(), Username: "ray"},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step feeds msg to the model and runs the returned command once, feeding its message back.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	m = updated.(Model)
	if cmd == nil {
		return m
	}
	next := cmd()
	if next == nil {
		return m
	}
	updated, _ = m.Update(next)
	return updated.(Model)
}

func loaded(t *testing.T, f *stubFetcher, events <-chan notifier.Event) Model {
	t.Helper()
	m := New(f, events, 4, 1)
	updated, _ := m.Update(m.fetch(1)())
	return updated.(Model)
}

func TestInitialFetchRendersPosts(t *testing.T) {
	f := &stubFetcher{total: 10, size: 4}
	m := loaded(t, f, nil)

	out := m.View()
	if !strings.Contains(out, "post 0") || !strings.Contains(out, "post 3") || strings.Contains(out, "post 4") {
		t.Fatalf("expected first page in view, got:\n%s", out)
	}
	if m.pager.TotalPages() != 3 {
		t.Fatalf("expected 3 pages, got %d", m.pager.TotalPages())
	}
	if !strings.Contains(out, "offline") {
		t.Fatalf("expected offline status without an event stream")
	}
}

func TestNextAndPrevNavigation(t *testing.T) {
	f := &stubFetcher{total: 10, size: 4}
	m := loaded(t, f, nil)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = step(t, m, runes("l"))
	if m.pager.Current != 3 || !strings.Contains(m.View(), "post 8") {
		t.Fatalf("expected page 3, got %d", m.pager.Current)
	}

	calls := len(f.calls)
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.pager.Current != 3 || len(f.calls) != calls {
		t.Fatalf("expected next on the last page to be a no-op")
	}

	m = step(t, m, runes("h"))
	if m.pager.Current != 2 || !strings.Contains(m.View(), "post 4") {
		t.Fatalf("expected page 2, got %d", m.pager.Current)
	}
}

func TestJumpPastEndShowsEmptyPage(t *testing.T) {
	f := &stubFetcher{total: 10, size: 4}
	m := loaded(t, f, nil)

	m = step(t, m, runes("7"))
	if m.pager.Current != 7 {
		t.Fatalf("expected page 7, got %d", m.pager.Current)
	}
	if !strings.Contains(m.View(), "No posts on this page") {
		t.Fatalf("expected empty page message")
	}
}

func TestLateFetchIsDiscarded(t *testing.T) {
	f := &stubFetcher{total: 10, size: 4}
	m := loaded(t, f, nil)

	slow := m.fetch(1)
	updated, cmd := m.Update(runes("2"))
	m = updated.(Model)
	fresh := cmd()

	updated, _ = m.Update(fresh)
	m = updated.(Model)
	updated, _ = m.Update(slow())
	m = updated.(Model)

	if snap := m.view.Snapshot(); snap.Number != 2 || snap.Posts[0].Content != "post 4" {
		t.Fatalf("late page 1 response overwrote page 2: %+v", snap)
	}
}

func TestLateFetchErrorIsDiscarded(t *testing.T) {
	f := &stubFetcher{total: 10, size: 4}
	m := loaded(t, f, nil)

	slow := m.fetch(1)
	m = step(t, m, runes("2"))

	f.err = errors.New("stale boom")
	updated, _ := m.Update(slow())
	m = updated.(Model)

	out := m.View()
	if strings.Contains(out, "stale boom") || m.err != nil {
		t.Fatalf("late page 1 failure shown on page 2:\n%s", out)
	}
	if !strings.Contains(out, "post 4") {
		t.Fatalf("expected page 2 rows, got:\n%s", out)
	}
}

func TestAddedDuringNavigationLeavesRowsAlone(t *testing.T) {
	f := &stubFetcher{total: 10, size: 4}
	m := loaded(t, f, make(chan notifier.Event))
	m = step(t, m, runes("l"))
	before := m.view.Snapshot()

	updated, cmd := m.Update(runes("h"))
	m = updated.(Model)
	updated, _ = m.Update(eventMsg{ev: notifier.Added(makePost("brand new"))})
	m = updated.(Model)

	snap := m.view.Snapshot()
	if snap.Number != 2 || snap.Posts[0].ID != before.Posts[0].ID || len(snap.Posts) != len(before.Posts) {
		t.Fatalf("page 2 rows changed before page 1 arrived: %+v", snap)
	}
	if m.pager.TotalCount != 10 {
		t.Fatalf("expected total count untouched, got %d", m.pager.TotalCount)
	}

	updated, _ = m.Update(cmd())
	m = updated.(Model)
	if snap := m.view.Snapshot(); snap.Number != 1 || snap.Posts[0].Content != "post 0" {
		t.Fatalf("expected page 1 after the fetch, got %+v", snap)
	}
}

func TestEventsMergeIntoFirstPage(t *testing.T) {
	f := &stubFetcher{total: 10, size: 4}
	events := make(chan notifier.Event, 1)
	m := loaded(t, f, events)

	updated, cmd := m.Update(eventMsg{ev: notifier.Added(makePost("brand new"))})
	m = updated.(Model)
	if cmd == nil {
		t.Fatalf("expected to keep listening for events")
	}
	out := m.View()
	if !strings.Contains(out, "brand new") || strings.Contains(out, "post 3") {
		t.Fatalf("expected new post prepended and last row dropped, got:\n%s", out)
	}
	if m.pager.TotalCount != 11 || !strings.Contains(out, "postAdded") {
		t.Fatalf("expected total count 11 and live status, got %d", m.pager.TotalCount)
	}
}

func TestDeleteEventRefetches(t *testing.T) {
	f := &stubFetcher{total: 10, size: 4}
	m := loaded(t, f, make(chan notifier.Event))

	calls := len(f.calls)
	snap := m.view.Snapshot()
	updated, _ := m.Update(eventMsg{ev: notifier.Deleted(snap.Posts[0].ID.Hex())})
	m = updated.(Model)
	if !m.view.Loading() {
		t.Fatalf("expected a refetch to be in flight")
	}

	// the batch command blocks on the event channel, so run the fetch directly
	updated, _ = m.Update(m.fetch(1)())
	m = updated.(Model)
	if len(f.calls) != calls+1 {
		t.Fatalf("expected one more fetch, got %d", len(f.calls)-calls)
	}
}

func TestFetchErrorIsShown(t *testing.T) {
	f := &stubFetcher{err: errors.New("connection refused")}
	m := New(f, nil, 4, 1)
	updated, _ := m.Update(m.fetch(1)())
	m = updated.(Model)
	if m.view.Loading() || !strings.Contains(m.View(), "connection refused") {
		t.Fatalf("expected error in view, got:\n%s", m.View())
	}
}

func TestStreamClosedGoesOffline(t *testing.T) {
	events := make(chan notifier.Event)
	close(events)
	m := New(&stubFetcher{size: 4}, events, 4, 1)

	updated, _ := m.Update(m.waitForEvent()())
	if updated.(Model).live {
		t.Fatalf("expected offline after the stream closes")
	}
}

func TestQuit(t *testing.T) {
	m := New(&stubFetcher{size: 4}, nil, 4, 1)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
