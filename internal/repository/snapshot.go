package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/SVatsa12/teamforge/internal/domain"
)

// Snapshot is an immutable in-memory view of the user and project
// collections, loaded once from JSON files at startup.
type Snapshot struct {
	users    []domain.User
	projects map[string]domain.Project
	order    []string
}

// NewSnapshot builds a snapshot from already-decoded records.
func NewSnapshot(users []domain.User, projects []domain.Project) *Snapshot {
	s := &Snapshot{
		users:    users,
		projects: make(map[string]domain.Project, len(projects)),
		order:    make([]string, 0, len(projects)),
	}
	for _, p := range projects {
		s.projects[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	return s
}

// LoadSnapshot reads users and projects from JSON files. The projects file
// is optional; a missing path yields an empty project collection.
func LoadSnapshot(usersPath, projectsPath string) (*Snapshot, error) {
	var users []domain.User
	if err := readJSON(usersPath, &users); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	var projects []domain.Project
	if projectsPath != "" {
		if err := readJSON(projectsPath, &projects); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("load projects: %w", err)
			}
		}
	}

	return NewSnapshot(users, projects), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ListUsers returns the full candidate pool.
func (s *Snapshot) ListUsers(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

// GetProject resolves a project by id.
func (s *Snapshot) GetProject(_ context.Context, id string) (*domain.Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	return &p, nil
}

// ListProjects returns all projects in load order.
func (s *Snapshot) ListProjects(_ context.Context) ([]domain.Project, error) {
	out := make([]domain.Project, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.projects[id])
	}
	return out, nil
}
