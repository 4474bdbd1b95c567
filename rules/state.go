package rules

import "sync"

// State is the cross-row state of one run. It is created empty per run and
// must not be reused.
type State struct {
	mu      sync.Mutex
	domains map[string]struct{}
}

func NewState() *State {
	return &State{domains: make(map[string]struct{})}
}

// ClaimDomain records code as seen and reports whether it was new. The check
// and the insert happen under one lock.
func (s *State) ClaimDomain(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.domains[code]; seen {
		return false
	}
	s.domains[code] = struct{}{}
	return true
}
