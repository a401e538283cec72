package session

import (
	"container/list"
	"sync"
	"time"

	"briefly/internal/summarizer"
)

const (
	DefaultMaxEntries = 1024
	DefaultTTL        = 24 * time.Hour
)

// Session is the popup state of one chat.
type Session struct {
	PageURL string
	Style   summarizer.Style
	// Result is exactly what the result area shows, errors included.
	Result    string
	ShareOpen bool
	ThemeOpen bool
	// MessageID is the popup message the keyboard is attached to.
	MessageID int
}

// Store keeps sessions in LRU order and forgets them after ttl of inactivity.
type Store struct {
	mu         sync.Mutex
	entries    map[int64]*list.Element
	order      *list.List
	maxEntries int
	ttl        time.Duration
}

type entry struct {
	chatID    int64
	session   Session
	expiresAt time.Time
}

func NewStore(maxEntries int, ttl time.Duration) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Store{
		entries:    make(map[int64]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

func newSession() Session {
	return Session{Style: summarizer.StyleBrief}
}

// Get returns the chat's session or a fresh one when none is alive.
func (s *Store) Get(chatID int64, now time.Time) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem := s.liveElementLocked(chatID, now)
	if elem == nil {
		return newSession()
	}

	return elem.Value.(*entry).session //nolint:forcetypeassert // Only *entry is stored.
}

// Update applies fn to the chat's session and refreshes its expiry.
func (s *Store) Update(chatID int64, now time.Time, fn func(*Session)) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem := s.liveElementLocked(chatID, now)
	if elem == nil {
		elem = s.order.PushFront(&entry{chatID: chatID, session: newSession()})
		s.entries[chatID] = elem
	}

	e := elem.Value.(*entry) //nolint:forcetypeassert // Only *entry is stored.
	fn(&e.session)
	e.expiresAt = now.Add(s.ttl)

	s.enforceSizeLimitLocked()

	return e.session
}

// Sweep evicts expired sessions and reports how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0

	for elem := s.order.Back(); elem != nil; {
		prev := elem.Prev()

		if now.After(elem.Value.(*entry).expiresAt) { //nolint:forcetypeassert // Only *entry is stored.
			s.removeElementLocked(elem)
			removed++
		}

		elem = prev
	}

	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

func (s *Store) liveElementLocked(chatID int64, now time.Time) *list.Element {
	elem, ok := s.entries[chatID]
	if !ok {
		return nil
	}

	if now.After(elem.Value.(*entry).expiresAt) { //nolint:forcetypeassert // Only *entry is stored.
		s.removeElementLocked(elem)

		return nil
	}

	s.order.MoveToFront(elem)

	return elem
}

func (s *Store) enforceSizeLimitLocked() {
	for len(s.entries) > s.maxEntries {
		elem := s.order.Back()
		if elem == nil {
			return
		}
		s.removeElementLocked(elem)
	}
}

func (s *Store) removeElementLocked(elem *list.Element) {
	delete(s.entries, elem.Value.(*entry).chatID) //nolint:forcetypeassert // Only *entry is stored.
	s.order.Remove(elem)
}
