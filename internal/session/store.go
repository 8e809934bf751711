// Package session keeps the day each user picked until they send a city.
package session

import (
	"sync"

	"github.com/bobby-s-dev/wardrobe-bot/internal/models"
)

// Store maps a requester to a single pending day offset. Entries never
// expire; they live until taken or until Close.
type Store struct {
	mu      sync.Mutex
	pending map[int64]models.DayOffset
}

func NewStore() *Store {
	return &Store{pending: make(map[int64]models.DayOffset)}
}

// SetPendingOffset records the choice, replacing any earlier one.
func (s *Store) SetPendingOffset(requester int64, offset models.DayOffset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[requester] = offset
}

// TakePendingOffset returns the pending offset and removes it in one step.
func (s *Store) TakePendingOffset(requester int64) (models.DayOffset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offset, ok := s.pending[requester]
	if ok {
		delete(s.pending, requester)
	}
	return offset, ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close drops every pending entry.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[int64]models.DayOffset)
}
