package allocator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SVatsa12/teamforge/internal/domain"
	"github.com/SVatsa12/teamforge/internal/logger"
	"github.com/SVatsa12/teamforge/internal/repository"
)

// ErrValidation is returned when a request is missing required input.
var ErrValidation = errors.New("validation failed")

// Request describes a single allocation call.
type Request struct {
	ProjectID     string   `json:"project_id"`
	ProjectSkills []string `json:"project_skills"`
	TeamSize      int      `json:"team_size"`
	Persist       bool     `json:"persist"`
	Reason        string   `json:"reason"`
}

// Service performs allocation and unassignment against the backing stores.
type Service struct {
	users           repository.UserStore
	projects        repository.ProjectStore
	assignments     repository.AssignmentStore
	logger          logger.Logger
	defaultTeamSize int
}

// NewService creates an allocator service.
func NewService(
	users repository.UserStore,
	projects repository.ProjectStore,
	assignments repository.AssignmentStore,
	log logger.Logger,
	defaultTeamSize int,
) *Service {
	return &Service{
		users:           users,
		projects:        projects,
		assignments:     assignments,
		logger:          log,
		defaultTeamSize: defaultTeamSize,
	}
}

// Allocate resolves the required skills, scores and ranks the candidate
// pool, and returns the top teamSize candidates. With Persist set, one
// assignment per chosen candidate is appended to the assignment store.
//
// A ProjectID that does not resolve fails with repository.ErrNotFound before
// any scoring; a request with neither a ProjectID nor non-empty
// ProjectSkills fails with ErrValidation.
func (s *Service) Allocate(ctx context.Context, req Request) (*domain.AllocationResult, error) {
	required, projectID, err := s.resolveRequiredSkills(ctx, req)
	if err != nil {
		return nil, err
	}

	teamSize := req.TeamSize
	if teamSize <= 0 {
		teamSize = s.defaultTeamSize
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	candidates := Rank(users, required)
	if len(candidates) > teamSize {
		candidates = candidates[:teamSize]
	}

	now := time.Now().UTC()

	result := &domain.AllocationResult{
		RequiredSkills: required,
		TeamSize:       teamSize,
		Candidates:     candidates,
		Timestamp:      now,
	}

	if req.Persist {
		if err := s.persistAssignments(ctx, candidates, projectID, req.Reason, now); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Allocation completed",
		logger.String("project_id", projectID),
		logger.Int("candidates", len(candidates)),
		logger.Bool("persisted", req.Persist),
	)

	return result, nil
}

// resolveRequiredSkills determines the required skill set from either the
// referenced project or the directly supplied list.
func (s *Service) resolveRequiredSkills(ctx context.Context, req Request) ([]string, string, error) {
	if req.ProjectID != "" {
		project, err := s.projects.GetProject(ctx, req.ProjectID)
		if err != nil {
			return nil, "", err
		}
		return NormalizeSkills(project.Skills), project.ID, nil
	}

	required := NormalizeSkills(req.ProjectSkills)
	if len(required) == 0 {
		return nil, "", fmt.Errorf("%w: project_id or a non-empty project_skills list is required", ErrValidation)
	}

	return required, "", nil
}

func (s *Service) persistAssignments(
	ctx context.Context,
	candidates []domain.Candidate,
	projectID, reason string,
	assignedAt time.Time,
) error {
	for i := range candidates {
		c := &candidates[i]

		assignment := &domain.Assignment{
			ID:                    uuid.New().String(),
			ProjectID:             projectID,
			UserID:                c.UserID,
			AssignedAt:            assignedAt,
			Coverage:              c.Coverage,
			MatchedRequiredSkills: c.MatchedRequiredSkills,
			Reason:                reason,
		}

		if err := s.assignments.Append(ctx, assignment); err != nil {
			return fmt.Errorf("persist assignment for user %s: %w", c.UserID, err)
		}
	}

	return nil
}

// Unassign removes an assignment by id and returns the removed record.
// A missing id fails with repository.ErrNotFound and leaves the store
// unchanged.
func (s *Service) Unassign(ctx context.Context, id string) (*domain.Assignment, error) {
	removed, err := s.assignments.RemoveByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Assignment removed",
		logger.String("assignment_id", id),
		logger.String("user_id", removed.UserID),
	)

	return removed, nil
}

// ListAssignments returns all persisted assignments.
func (s *Service) ListAssignments(ctx context.Context) ([]domain.Assignment, error) {
	return s.assignments.List(ctx)
}
