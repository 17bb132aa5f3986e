package view

import "sync"

// Pager tracks how many records are revealed. The size only ever grows
// within a session; filter changes never shrink it.
type Pager struct {
	mu        sync.Mutex
	size      int
	increment int
}

// NewPager returns a pager starting at size that grows by increment.
// Non-positive arguments fall back to the defaults.
func NewPager(size, increment int) *Pager {
	if size < 1 {
		size = DefaultPageSize
	}
	if increment < 1 {
		increment = DefaultIncrement
	}
	return &Pager{size: size, increment: increment}
}

// Size returns the current page size.
func (p *Pager) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// LoadMore grows the page by the increment and returns the new size.
func (p *Pager) LoadMore() int {
	return p.Grow(p.increment)
}

// Grow grows the page by n and returns the new size. Non-positive n is ignored.
func (p *Pager) Grow(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n > 0 {
		p.size += n
	}
	return p.size
}
