// Package crawl — traversal bookkeeping.
// A Frontier drives the BFS over catalog pages; a LinkSet collects the
// discovered document links in stable order without duplicates.
package crawl

// Frontier is a FIFO of pages still to visit, deduplicated against
// everything ever enqueued.
type Frontier struct {
	pending []string
	seen    map[string]bool
	visited int
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{seen: make(map[string]bool)}
}

// Push enqueues a page URL unless it was already seen.
func (f *Frontier) Push(url string) {
	if f.seen[url] {
		return
	}
	f.seen[url] = true
	f.pending = append(f.pending, url)
}

// Pop dequeues the next page URL. ok is false when the frontier is empty.
func (f *Frontier) Pop() (url string, ok bool) {
	if len(f.pending) == 0 {
		return "", false
	}
	url, f.pending = f.pending[0], f.pending[1:]
	f.visited++
	return url, true
}

// Visited returns how many pages have been popped so far.
func (f *Frontier) Visited() int { return f.visited }

// LinkSet is an insertion-ordered set of document links.
type LinkSet struct {
	links []string
	seen  map[string]bool
}

// NewLinkSet creates an empty LinkSet.
func NewLinkSet() *LinkSet {
	return &LinkSet{seen: make(map[string]bool)}
}

// Add records a link once; later duplicates are ignored.
func (s *LinkSet) Add(url string) {
	if s.seen[url] {
		return
	}
	s.seen[url] = true
	s.links = append(s.links, url)
}

// All returns the collected links in insertion order.
func (s *LinkSet) All() []string { return s.links }
