// Package repository provides the data stores consumed by the allocator:
// read-only user/project snapshots and an append-only assignment store.
package repository

import (
	"context"
	"errors"

	"github.com/SVatsa12/teamforge/internal/domain"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// UserStore lists the candidate pool.
type UserStore interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// ProjectStore resolves projects by id.
type ProjectStore interface {
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
}

// AssignmentStore persists team assignments. Assignments are immutable once
// created; the only mutations are append and remove-by-id.
type AssignmentStore interface {
	List(ctx context.Context) ([]domain.Assignment, error)
	Append(ctx context.Context, a *domain.Assignment) error
	RemoveByID(ctx context.Context, id string) (*domain.Assignment, error)
}
