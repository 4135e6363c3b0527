package nav

import "sync"

// Store holds the room currently selected for management. It is the only
// state shared between the list and detail views.
type Store struct {
	mu       sync.Mutex
	selected string
	subs     map[int]chan string
	nextID   int
}

// NewStore creates a store with nothing selected.
func NewStore() *Store {
	return &Store{subs: make(map[int]chan string)}
}

// SelectedRoomID returns the selected room id and whether one is set.
func (s *Store) SelectedRoomID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.selected != ""
}

// Select sets the selected room id. An empty id clears the selection.
func (s *Store) Select(roomID string) {
	s.set(roomID)
}

// Clear drops the selection.
func (s *Store) Clear() {
	s.set("")
}

// Subscribe returns a channel receiving the selected id after each change,
// and a function that ends the subscription. Slow readers only see the
// latest value.
func (s *Store) Subscribe() (<-chan string, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan string, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
		})
	}
}

func (s *Store) set(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == roomID {
		return
	}
	s.selected = roomID

	for _, ch := range s.subs {
		// Replace any undelivered value with the newest one.
		select {
		case <-ch:
		default:
		}
		ch <- roomID
	}
}
