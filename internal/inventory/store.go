package inventory

import "github.com/vbonduro/toyinv/internal/domain"

// Store holds the authoritative snapshot of toy records. It is always
// replaced wholesale by a refresh, never patched. Store is not safe for
// concurrent use on its own; App guards it.
type Store struct {
	toys     []*domain.Toy
	inflight int
	issued   uint64
	applied  uint64
}

// begin registers a refresh and returns its sequence number.
func (s *Store) begin() uint64 {
	s.inflight++
	s.issued++
	return s.issued
}

// finish ends the refresh seq. A successful result replaces the snapshot
// unless a newer refresh has already been applied. stale reports that a newer
// refresh was applied first, in which case the result, error or not, is moot.
func (s *Store) finish(seq uint64, toys []*domain.Toy, err error) (changed, stale bool) {
	s.inflight--
	if seq < s.applied {
		return false, true
	}
	if err != nil {
		return false, false
	}
	s.applied = seq
	s.toys = toys
	return true, false
}

// Toys returns the current snapshot. Records are shared and must not be
// modified.
func (s *Store) Toys() []*domain.Toy {
	out := make([]*domain.Toy, len(s.toys))
	copy(out, s.toys)
	return out
}

// Loading reports whether any refresh is in flight.
func (s *Store) Loading() bool {
	return s.inflight > 0
}

// Find returns the snapshot record with the given id, or nil.
func (s *Store) Find(id string) *domain.Toy {
	for _, t := range s.toys {
		if t.ID == id {
			return t
		}
	}
	return nil
}
