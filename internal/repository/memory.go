package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/SVatsa12/teamforge/internal/domain"
)

// MemoryAssignmentStore keeps assignments in process memory. It is the
// default store when no database is configured, and doubles as the test
// store.
type MemoryAssignmentStore struct {
	mu          sync.Mutex
	assignments []domain.Assignment
}

// NewMemoryAssignmentStore creates an empty in-memory assignment store.
func NewMemoryAssignmentStore() *MemoryAssignmentStore {
	return &MemoryAssignmentStore{}
}

// List returns all assignments in append order.
func (s *MemoryAssignmentStore) List(_ context.Context) ([]domain.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Assignment, len(s.assignments))
	copy(out, s.assignments)
	return out, nil
}

// Append adds an assignment.
func (s *MemoryAssignmentStore) Append(_ context.Context, a *domain.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignments = append(s.assignments, *a)
	return nil
}

// RemoveByID deletes an assignment and returns the removed record.
func (s *MemoryAssignmentStore) RemoveByID(_ context.Context, id string) (*domain.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.assignments {
		if s.assignments[i].ID == id {
			removed := s.assignments[i]
			s.assignments = append(s.assignments[:i], s.assignments[i+1:]...)
			return &removed, nil
		}
	}

	return nil, fmt.Errorf("assignment %q: %w", id, ErrNotFound)
}
