package workqueue

import "sync"

// Strategy decides whether a job of a given kind may start. The queue calls
// OnStart and OnDone from its scheduler; implementations only need to guard
// their own counters.
type Strategy interface {
	CanStart(kind Kind) bool
	OnStart(kind Kind)
	OnDone(kind Kind)
}

// SerializedStrategy runs at most one provider job and one local job at a
// time. A provider job and a local job may overlap.
type SerializedStrategy struct {
	mu           sync.Mutex
	providerBusy bool
	localBusy    bool
}

// NewSerializedStrategy creates the default strategy.
func NewSerializedStrategy() *SerializedStrategy {
	return &SerializedStrategy{}
}

func (s *SerializedStrategy) CanStart(kind Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == KindProvider {
		return !s.providerBusy
	}
	return !s.localBusy
}

func (s *SerializedStrategy) OnStart(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == KindProvider {
		s.providerBusy = true
	} else {
		s.localBusy = true
	}
}

func (s *SerializedStrategy) OnDone(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == KindProvider {
		s.providerBusy = false
	} else {
		s.localBusy = false
	}
}

// ThrottledProviderStrategy allows up to maxConcurrent provider jobs at once.
// Local jobs stay serialized.
type ThrottledProviderStrategy struct {
	mu            sync.Mutex
	maxConcurrent int
	providerCount int
	localBusy     bool
}

// NewThrottledProviderStrategy creates a strategy with the given provider
// concurrency. Values below 1 are raised to 1.
func NewThrottledProviderStrategy(maxConcurrent int) *ThrottledProviderStrategy {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &ThrottledProviderStrategy{maxConcurrent: maxConcurrent}
}

func (s *ThrottledProviderStrategy) CanStart(kind Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == KindProvider {
		return s.providerCount < s.maxConcurrent
	}
	return !s.localBusy
}

func (s *ThrottledProviderStrategy) OnStart(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == KindProvider {
		s.providerCount++
	} else {
		s.localBusy = true
	}
}

func (s *ThrottledProviderStrategy) OnDone(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == KindProvider && s.providerCount > 0 {
		s.providerCount--
	} else if kind == KindLocal {
		s.localBusy = false
	}
}
