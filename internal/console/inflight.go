package console

import "sync"

// inflight admits one mutation per product id at a time.
type inflight struct {
	mu  sync.Mutex
	ids map[int]struct{}
}

func newInflight() *inflight {
	return &inflight{ids: make(map[int]struct{})}
}

func (f *inflight) acquire(id int) (release func(), ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.ids[id]; busy {
		return nil, false
	}
	f.ids[id] = struct{}{}
	return func() {
		f.mu.Lock()
		delete(f.ids, id)
		f.mu.Unlock()
	}, true
}
