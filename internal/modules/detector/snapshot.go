package detector

import "sync/atomic"

// Snapshot holds the process-wide fitted model as a swappable immutable
// reference. Readers scoring concurrent requests see either the pre- or
// post-swap model, never a partially updated one; Store is the only writer.
type Snapshot struct {
	current atomic.Pointer[Model]
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Store swaps in a newly fitted or loaded model
func (s *Snapshot) Store(m *Model) {
	s.current.Store(m)
}

// Current returns the active model, or nil if none has been stored
func (s *Snapshot) Current() *Model {
	return s.current.Load()
}
