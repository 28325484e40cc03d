package sitemap

import (
	"slices"
	"sync"
)

// SkipReason explains why a sitemap URL was not fetched.
type SkipReason string

const (
	SkipNone      SkipReason = ""
	SkipDuplicate SkipReason = "duplicate"
	SkipMaxCount  SkipReason = "max_sitemaps"
	SkipMaxDepth  SkipReason = "max_depth"
)

// VisitedSet records the sitemap URLs claimed during one resolution run.
// It is shared by all branches, so the max count is a global budget.
type VisitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
	max  int
}

// NewVisitedSet creates a set that admits at most max URLs.
func NewVisitedSet(maxURLs int) *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{}), max: maxURLs}
}

// TryVisit claims url for fetching. It returns true exactly once per URL and
// never more than max times in total; otherwise it reports the reason.
func (v *VisitedSet) TryVisit(url string) (bool, SkipReason) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.seen[url]; ok {
		return false, SkipDuplicate
	}
	if len(v.seen) >= v.max {
		return false, SkipMaxCount
	}

	v.seen[url] = struct{}{}
	return true, SkipNone
}

// Len returns the number of claimed URLs.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}

// Accumulator is a concurrency-safe set of page URLs keyed by exact string.
type Accumulator struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{urls: make(map[string]struct{})}
}

// Add inserts urls and returns how many were new.
func (a *Accumulator) Add(urls ...string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	added := 0
	for _, u := range urls {
		if _, ok := a.urls[u]; ok {
			continue
		}
		a.urls[u] = struct{}{}
		added++
	}
	return added
}

// Len returns the number of distinct URLs.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.urls)
}

// Sorted returns the distinct URLs in ascending byte order. The result is
// never nil.
func (a *Accumulator) Sorted() []string {
	a.mu.Lock()
	out := make([]string, 0, len(a.urls))
	for u := range a.urls {
		out = append(out, u)
	}
	a.mu.Unlock()

	slices.Sort(out)
	return out
}
