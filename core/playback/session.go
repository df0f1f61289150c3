package playback

import (
	"sync"

	"FrameLoom/logger"
)

// Session owns the set of media elements registered for one editor
// session. It replaces process-wide registries with an explicit object
// that is constructed, injected and torn down, so isolated instances can
// coexist (one per preview connection, one per test).
//
// Register/Unregister are synchronous and safe to call from mount/unmount
// lifecycles. A source may be unregistered while an async operation on it
// is still in flight; late callbacks must re-check with Source() before
// acting on the result.
type Session struct {
	mu      sync.Mutex
	sources map[string]*Source
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{sources: make(map[string]*Source)}
}

// Register binds a media element to a source id, replacing any previous
// binding. Returns the readiness wrapper for the element.
func (s *Session) Register(sourceID string, el MediaElement) *Source {
	src := NewSource(el)
	s.mu.Lock()
	s.sources[sourceID] = src
	s.mu.Unlock()
	logger.Debug("media element registered", logger.String("sourceId", sourceID))
	return src
}

// Unregister removes a binding. The element is paused so nothing keeps
// playing after its owner is gone.
func (s *Session) Unregister(sourceID string) {
	s.mu.Lock()
	src, ok := s.sources[sourceID]
	if ok {
		delete(s.sources, sourceID)
	}
	s.mu.Unlock()
	if ok {
		src.Element().Pause()
		logger.Debug("media element unregistered", logger.String("sourceId", sourceID))
	}
}

// Source returns the current binding for a source id, nil if none. Late
// async callbacks use this to tolerate removal during an in-flight
// operation.
func (s *Session) Source(sourceID string) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sources[sourceID]
}

// SourceIDs returns the ids of all registered sources.
func (s *Session) SourceIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sources))
	for id := range s.sources {
		ids = append(ids, id)
	}
	return ids
}

// Close pauses every element and clears the registry.
func (s *Session) Close() {
	s.mu.Lock()
	sources := s.sources
	s.sources = make(map[string]*Source)
	s.mu.Unlock()
	for _, src := range sources {
		src.Element().Pause()
	}
}
