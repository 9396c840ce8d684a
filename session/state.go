package session

import "sync"

// Event is published when a user signs in or out.
type Event struct {
	UID      string
	SignedIn bool
}

// State is the process-wide signed-in observable. It is created once at
// startup and passed to whoever needs to react to sign-in and sign-out.
type State struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func(Event)
}

func NewState() *State {
	return &State{subs: make(map[string]map[int]func(Event))}
}

// Subscribe registers fn for events about uid. The returned func removes the
// subscription and is safe to call more than once.
func (s *State) Subscribe(uid string, fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	if s.subs[uid] == nil {
		s.subs[uid] = make(map[int]func(Event))
	}
	s.subs[uid][id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs[uid], id)
			if len(s.subs[uid]) == 0 {
				delete(s.subs, uid)
			}
		})
	}
}

// Publish calls every subscriber of e.UID. Callbacks run outside the lock so
// they may unsubscribe.
func (s *State) Publish(e Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.subs[e.UID]))
	for _, fn := range s.subs[e.UID] {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}

// Subscribers returns how many subscriptions uid has.
func (s *State) Subscribers(uid string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs[uid])
}
