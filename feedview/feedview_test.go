package feedview

import (
	"fmt"
	"testing"

	"socialfeed/models"
	"socialfeed/notifier"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func makePost(content string) models.Post {
	return models.Post{
		ID:       primitive.NewObjectID(),
		Content:  content,
		Image:    models.PlaceholderImage(),
		PostedBy: models.Author{ID: primitive.NewObjectID(), Username: "ray"},
	}
}

func fullPage(number int) Page {
	p := Page{Number: number, Size: 4, TotalCount: 10}
	for i := 0; i < 4; i++ {
		p.Posts = append(p.Posts, makePost(fmt.Sprintf("post %d", i)))
	}
	return p
}

func TestReduceAddedOnFirstPageKeepsLength(t *testing.T) {
	page := fullPage(1)
	fresh := makePost("fresh")

	next, effect := Reduce(page, notifier.Added(fresh))
	if effect != None {
		t.Fatalf("expected no effect, got %s", effect)
	}
	if len(next.Posts) != 4 {
		t.Fatalf("expected 4 posts, got %d", len(next.Posts))
	}
	if next.Posts[0].ID != fresh.ID {
		t.Fatalf("expected new post first")
	}
	if next.Posts[3].ID != page.Posts[2].ID {
		t.Fatalf("expected previous 4th post to be dropped")
	}
	if next.TotalCount != 11 {
		t.Fatalf("expected total count 11, got %d", next.TotalCount)
	}
	if page.Posts[0].Content != "post 0" || len(page.Posts) != 4 {
		t.Fatalf("input page was modified")
	}
}

func TestReduceAddedOnShortPageGrows(t *testing.T) {
	page := Page{Number: 1, Size: 4, Posts: []models.Post{makePost("only")}, TotalCount: 1}
	next, _ := Reduce(page, notifier.Added(makePost("fresh")))
	if len(next.Posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(next.Posts))
	}
}

func TestReduceAddedIsIdempotent(t *testing.T) {
	page := fullPage(1)
	fresh := makePost("fresh")
	once, _ := Reduce(page, notifier.Added(fresh))
	twice, effect := Reduce(once, notifier.Added(fresh))
	if effect != None || len(twice.Posts) != 4 || twice.TotalCount != once.TotalCount {
		t.Fatalf("expected duplicate add to be ignored, got %+v", twice)
	}
	if twice.Posts[1].ID == fresh.ID {
		t.Fatalf("duplicate add inserted twice")
	}
}

func TestReduceAddedOnLaterPageIsIgnored(t *testing.T) {
	page := fullPage(2)
	next, effect := Reduce(page, notifier.Added(makePost("fresh")))
	if effect != None {
		t.Fatalf("expected no effect, got %s", effect)
	}
	if next.Posts[0].ID != page.Posts[0].ID || next.TotalCount != page.TotalCount {
		t.Fatalf("expected page 2 to stay untouched")
	}
}

func TestReduceUpdatedMergesInPlace(t *testing.T) {
	page := fullPage(2)
	edited := page.Posts[2]
	edited.Content = "edited"

	next, effect := Reduce(page, notifier.Updated(edited))
	if effect != None {
		t.Fatalf("expected no effect, got %s", effect)
	}
	if next.Posts[2].Content != "edited" {
		t.Fatalf("expected row 2 to be replaced, got %q", next.Posts[2].Content)
	}
	if page.Posts[2].Content != "post 2" {
		t.Fatalf("input page was modified")
	}

	other, effect := Reduce(page, notifier.Updated(makePost("elsewhere")))
	if effect != None || other.Posts[0].ID != page.Posts[0].ID {
		t.Fatalf("expected update of an undisplayed post to be ignored")
	}
}

func TestReduceDeletedRefetches(t *testing.T) {
	page := fullPage(1)
	next, effect := Reduce(page, notifier.Deleted(page.Posts[1].ID.Hex()))
	if effect != Refetch {
		t.Fatalf("expected refetch, got %s", effect)
	}
	if len(next.Posts) != 4 {
		t.Fatalf("expected page to stay as is until the refetch lands")
	}
}

func TestReduceMalformedEventsRefetch(t *testing.T) {
	page := fullPage(1)
	cases := []notifier.Event{
		{Kind: notifier.PostAdded},
		{Kind: notifier.PostUpdated},
		{Kind: notifier.PostAdded, Post: &models.Post{Content: "no id"}},
		{Kind: "postExploded"},
	}
	for _, ev := range cases {
		if _, effect := Reduce(page, ev); effect != Refetch {
			t.Fatalf("expected refetch for %+v, got %s", ev, effect)
		}
	}
}

func TestModelDiscardsStaleFetch(t *testing.T) {
	m := NewModel(4)

	first := m.BeginFetch(1)
	second := m.BeginFetch(2)

	if m.ApplyFetch(first, fullPage(1)) {
		t.Fatalf("expected stale fetch to be discarded")
	}
	if !m.Loading() {
		t.Fatalf("stale fetch should not clear loading state")
	}
	if !m.ApplyFetch(second, fullPage(2)) {
		t.Fatalf("expected latest fetch to apply")
	}
	if snap := m.Snapshot(); snap.Number != 2 || len(snap.Posts) != 4 || m.Loading() {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestModelApplyAndSnapshotAreIsolated(t *testing.T) {
	m := NewModel(4)
	gen := m.BeginFetch(1)
	m.ApplyFetch(gen, fullPage(1))

	snap := m.Snapshot()
	snap.Posts[0].Content = "scribbled"

	if effect := m.Apply(notifier.Added(makePost("fresh"))); effect != None {
		t.Fatalf("expected no effect, got %s", effect)
	}
	after := m.Snapshot()
	if after.Posts[0].Content != "fresh" || after.Posts[1].Content != "post 0" {
		t.Fatalf("unexpected posts after merge: %q, %q", after.Posts[0].Content, after.Posts[1].Content)
	}
	if effect := m.Apply(notifier.Deleted(after.Posts[0].ID.Hex())); effect != Refetch {
		t.Fatalf("expected refetch on delete, got %s", effect)
	}
}

func TestModelFailFetch(t *testing.T) {
	m := NewModel(4)
	gen := m.BeginFetch(3)
	if m.FailFetch(gen - 1) {
		t.Fatalf("expected failure of an old fetch to be ignored")
	}
	if !m.Loading() {
		t.Fatalf("failure of an old fetch should not clear loading")
	}
	if !m.FailFetch(gen) {
		t.Fatalf("expected failure of the latest fetch to count")
	}
	if m.Loading() {
		t.Fatalf("expected loading to clear")
	}
}

func TestModelKeepsDisplayedPageUntilFetchLands(t *testing.T) {
	m := NewModel(4)
	m.ApplyFetch(m.BeginFetch(2), fullPage(2))
	before := m.Snapshot()

	gen := m.BeginFetch(1)
	if effect := m.Apply(notifier.Added(makePost("brand new"))); effect != None {
		t.Fatalf("expected no effect while page 2 is displayed, got %s", effect)
	}
	during := m.Snapshot()
	if during.Number != 2 || during.TotalCount != before.TotalCount || during.Posts[0].ID != before.Posts[0].ID {
		t.Fatalf("page 2 rows changed while page 1 was loading: %+v", during)
	}

	if !m.ApplyFetch(gen, fullPage(1)) {
		t.Fatalf("expected page 1 fetch to apply")
	}
	if snap := m.Snapshot(); snap.Number != 1 {
		t.Fatalf("expected page 1, got %d", snap.Number)
	}
}
