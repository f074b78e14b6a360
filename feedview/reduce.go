// Package feedview keeps the displayed feed page in step with live change events.
package feedview

import (
	"socialfeed/models"
	"socialfeed/notifier"
)

// Effect tells the caller what to do after an event has been reduced.
type Effect int

const (
	None Effect = iota
	Refetch
)

func (e Effect) String() string {
	if e == Refetch {
		return "refetch"
	}
	return "none"
}

// Page is one displayed slice of the feed, newest first.
type Page struct {
	Number     int
	Size       int
	Posts      []models.Post
	TotalCount int64
}

func (p Page) clone() Page {
	p.Posts = append([]models.Post(nil), p.Posts...)
	return p
}

func (p Page) indexOf(id string) int {
	for i := range p.Posts {
		if p.Posts[i].ID.Hex() == id {
			return i
		}
	}
	return -1
}

// Reduce applies ev to page and returns the new page. page is never modified.
//
// Added posts are prepended on page 1 only, keeping the row count at Size. Updates replace the
// matching row in place. Deletions and anything that cannot be merged ask for a refetch, because
// removing a row shifts the membership of every later page.
func Reduce(page Page, ev notifier.Event) (Page, Effect) {
	switch ev.Kind {
	case notifier.PostAdded:
		if ev.Post == nil || ev.Post.ID.IsZero() {
			return page, Refetch
		}
		if page.Number != 1 || page.indexOf(ev.Post.ID.Hex()) >= 0 {
			return page, None
		}
		next := page.clone()
		next.Posts = append([]models.Post{*ev.Post}, next.Posts...)
		if next.Size > 0 && len(next.Posts) > next.Size {
			next.Posts = next.Posts[:next.Size]
		}
		next.TotalCount++
		return next, None

	case notifier.PostUpdated:
		if ev.Post == nil || ev.Post.ID.IsZero() {
			return page, Refetch
		}
		i := page.indexOf(ev.Post.ID.Hex())
		if i < 0 {
			return page, None
		}
		next := page.clone()
		next.Posts[i] = *ev.Post
		return next, None

	case notifier.PostDeleted:
		return page, Refetch

	default:
		return page, Refetch
	}
}
