package pagination

import "testing"

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 4, 0},
		{1, 4, 1},
		{4, 4, 1},
		{10, 4, 3},
		{200, 4, 50},
	}
	for _, tc := range cases {
		c := &Controller{PageSize: tc.size, TotalCount: tc.total, Current: 1}
		if got := c.TotalPages(); got != tc.want {
			t.Fatalf("expected %d pages for %d/%d, got %d", tc.want, tc.total, tc.size, got)
		}
	}
}

func TestDisplayedPagesIsClamped(t *testing.T) {
	c := &Controller{PageSize: 4, TotalCount: 200, Current: 1}
	if got := c.DisplayedPages(); got != MaxDisplayedPages {
		t.Fatalf("expected %d displayed pages, got %d", MaxDisplayedPages, got)
	}
}

func TestNextStopsAtLastPage(t *testing.T) {
	c := &Controller{PageSize: 4, TotalCount: 10, Current: 3}
	if c.Next() {
		t.Fatalf("expected next to be a no-op on the last page")
	}
	if c.Current != 3 {
		t.Fatalf("expected current page 3, got %d", c.Current)
	}

	c.Current = 2
	if !c.Next() || c.Current != 3 {
		t.Fatalf("expected to advance to page 3, got %d", c.Current)
	}
}

func TestNextStopsAtDisplayedMax(t *testing.T) {
	c := &Controller{PageSize: 4, TotalCount: 200, Current: MaxDisplayedPages}
	if c.Next() {
		t.Fatalf("expected next to stop at page %d", MaxDisplayedPages)
	}
}

func TestPrevStopsAtFirstPage(t *testing.T) {
	c := New(4)
	c.TotalCount = 10
	if c.Prev() || c.Current != 1 {
		t.Fatalf("expected prev to be a no-op on page 1, got %d", c.Current)
	}
	c.Current = 3
	if !c.Prev() || c.Current != 2 {
		t.Fatalf("expected to go back to page 2, got %d", c.Current)
	}
}

func TestGoToIsUnbounded(t *testing.T) {
	c := New(4)
	c.TotalCount = 10
	c.GoTo(42)
	if c.Current != 42 {
		t.Fatalf("expected current page 42, got %d", c.Current)
	}
}

func TestNewClampsPageSize(t *testing.T) {
	if c := New(0); c.PageSize != 1 || c.Current != 1 {
		t.Fatalf("unexpected controller: %+v", c)
	}
}
