// internal/registry/events.go
package registry

import (
	"jivelink/pkg/communities"
)

// Event names the community lifecycle notifications.
type Event string

const (
	EventRegisteredSuccess Event = "registeredJiveInstanceSuccess"
	EventRegisteredFailed  Event = "registeredJiveInstanceFailed"
	EventUnregisterSuccess Event = "unregisterJiveInstanceSuccess"
	EventUnregisterFailed  Event = "unregisterJiveInstanceFailed"
)

// Observer receives lifecycle notifications. err is nil on success events.
// Notifications are fire-and-forget: observer errors cannot fail the
// operation that produced them.
type Observer func(event Event, c communities.Community, err error)

// Subscribe registers an observer for lifecycle events.
func (s *Service) Subscribe(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Service) notify(event Event, c communities.Community, err error) {
	s.obsMu.RLock()
	obs := make([]Observer, len(s.observers))
	copy(obs, s.observers)
	s.obsMu.RUnlock()
	for _, o := range obs {
		o(event, c, err)
	}
}
