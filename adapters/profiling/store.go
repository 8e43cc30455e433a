package profiling

import (
	"sort"
	"sync"

	"tseval/domain/eval"
)

// DefaultStoreRetention caps recorded profiles per approach
const DefaultStoreRetention = 50

// InMemoryProfileStore is the bounded, approach-keyed profile registry.
// It is constructed by the orchestrating driver and passed in explicitly;
// nothing in this package holds one at package level. Appends are
// serialized; reads return copies.
type InMemoryProfileStore struct {
	retention int

	mu       sync.RWMutex
	profiles map[string][]eval.EfficiencyProfile
}

// NewInMemoryProfileStore creates a bounded profile store
func NewInMemoryProfileStore(retention int) *InMemoryProfileStore {
	if retention <= 0 {
		retention = DefaultStoreRetention
	}
	return &InMemoryProfileStore{
		retention: retention,
		profiles:  make(map[string][]eval.EfficiencyProfile),
	}
}

// Append records one profile, evicting the oldest past the retention cap
func (s *InMemoryProfileStore) Append(profile eval.EfficiencyProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := append(s.profiles[profile.Approach], profile)
	if len(buf) > s.retention {
		buf = buf[len(buf)-s.retention:]
	}
	s.profiles[profile.Approach] = buf
}

// Profiles returns a copy of the recorded profiles for one approach
func (s *InMemoryProfileStore) Profiles(approach string) []eval.EfficiencyProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buf := s.profiles[approach]
	out := make([]eval.EfficiencyProfile, len(buf))
	copy(out, buf)
	return out
}

// Approaches lists recorded approach labels in sorted order
func (s *InMemoryProfileStore) Approaches() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	labels := make([]string, 0, len(s.profiles))
	for label := range s.profiles {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
