package feedview

import (
	"log"
	"sync"

	"socialfeed/notifier"
)

// Model is the displayed page shared between the fetch path and the event stream.
// Fetches are tagged with a generation so a late response cannot overwrite newer navigation.
// The displayed page keeps its own number until the fetch for pending lands.
type Model struct {
	mu      sync.Mutex
	page    Page
	pending int
	gen     uint64
	loading bool
}

func NewModel(pageSize int) *Model {
	return &Model{page: Page{Number: 1, Size: pageSize}, pending: 1}
}

// BeginFetch starts a fetch of page number and returns its generation.
func (m *Model) BeginFetch(number int) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.loading = true
	m.pending = number
	return m.gen
}

// ApplyFetch installs a fetched page if gen is still the latest fetch. It reports whether it did.
func (m *Model) ApplyFetch(gen uint64, page Page) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen || page.Number != m.pending {
		return false
	}
	if page.Size == 0 {
		page.Size = m.page.Size
	}
	m.page = page.clone()
	m.loading = false
	return true
}

// FailFetch clears the loading flag for gen without touching the displayed posts. It reports
// false when gen has been superseded, in which case the failure should be ignored.
func (m *Model) FailFetch(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return false
	}
	m.loading = false
	return true
}

// Apply merges ev into the displayed page. A merge that panics is recovered and turned into a refetch.
func (m *Model) Apply(ev notifier.Event) (effect Effect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[FeedView] merge of %s failed: %v", ev.Kind, r)
			effect = Refetch
		}
	}()

	next, effect := Reduce(m.page, ev)
	m.page = next
	return effect
}

// Snapshot returns a copy of the displayed page.
func (m *Model) Snapshot() Page {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page.clone()
}

func (m *Model) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}
