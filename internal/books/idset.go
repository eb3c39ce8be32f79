package books

import "sync"

// IDSet is a concurrency-safe set of book IDs. The startup load and the Kafka
// consumer share one so a book reaches the catalog once however it arrives.
type IDSet struct {
	mu  sync.Mutex
	ids map[int64]struct{}
}

func NewIDSet() *IDSet {
	return &IDSet{ids: make(map[int64]struct{})}
}

// Mark adds id and reports whether it was not already present.
func (s *IDSet) Mark(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *IDSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
