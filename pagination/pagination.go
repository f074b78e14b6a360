// Package pagination turns a post count into a bounded set of navigable feed pages.
package pagination

// MaxDisplayedPages caps the page buttons shown. Later pages stay reachable through GoTo.
const MaxDisplayedPages = 10

type Controller struct {
	PageSize   int
	TotalCount int64
	Current    int
}

func New(pageSize int) *Controller {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Controller{PageSize: pageSize, Current: 1}
}

// TotalPages is ceil(TotalCount / PageSize).
func (c *Controller) TotalPages() int {
	if c.PageSize < 1 || c.TotalCount <= 0 {
		return 0
	}
	size := int64(c.PageSize)
	return int((c.TotalCount + size - 1) / size)
}

// DisplayedPages is TotalPages clamped to MaxDisplayedPages.
func (c *Controller) DisplayedPages() int {
	return min(c.TotalPages(), MaxDisplayedPages)
}

// Prev moves back one page and reports whether it moved.
func (c *Controller) Prev() bool {
	if c.Current > 1 {
		c.Current--
		return true
	}
	return false
}

// Next moves forward one page, never past the last displayed page.
func (c *Controller) Next() bool {
	if c.Current < c.DisplayedPages() {
		c.Current++
		return true
	}
	return false
}

// GoTo sets the current page without bounds checks; the feed answers out-of-range pages with no posts.
func (c *Controller) GoTo(n int) {
	c.Current = n
}
