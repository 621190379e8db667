package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// Postgres driver registration.
	_ "github.com/lib/pq"

	"github.com/SVatsa12/teamforge/internal/domain"
	"github.com/SVatsa12/teamforge/internal/logger"
)

const (
	pgMaxOpenConns    = 25
	pgMaxIdleConns    = 5
	pgConnMaxLifetime = 5 * time.Minute
	pgPingTimeout     = 5 * time.Second
)

// OpenPostgres opens and pings a Postgres connection.
func OpenPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(pgMaxOpenConns)
	db.SetMaxIdleConns(pgMaxIdleConns)
	db.SetConnMaxLifetime(pgConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pgPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// PostgresAssignmentStore persists assignments in a Postgres table.
type PostgresAssignmentStore struct {
	db     *sql.DB
	logger logger.Logger
}

// NewPostgresAssignmentStore creates a Postgres-backed assignment store.
func NewPostgresAssignmentStore(db *sql.DB, log logger.Logger) *PostgresAssignmentStore {
	return &PostgresAssignmentStore{
		db:     db,
		logger: log,
	}
}

// List returns all assignments ordered by creation time.
func (s *PostgresAssignmentStore) List(ctx context.Context) ([]domain.Assignment, error) {
	query := `
		SELECT id, project_id, user_id, assigned_at, coverage, matched_skills, reason
		FROM assignments
		ORDER BY assigned_at
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []domain.Assignment

	for rows.Next() {
		a, scanErr := scanAssignment(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		assignments = append(assignments, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}

	return assignments, nil
}

// Append inserts an assignment. A missing project id is stored as NULL, the
// same shape scanAssignment reads back, never as an empty string.
func (s *PostgresAssignmentStore) Append(ctx context.Context, a *domain.Assignment) error {
	matchedJSON, err := json.Marshal(a.MatchedRequiredSkills)
	if err != nil {
		return fmt.Errorf("marshal matched skills: %w", err)
	}

	projectID := sql.NullString{String: a.ProjectID, Valid: a.ProjectID != ""}

	query := `
		INSERT INTO assignments (
			id, project_id, user_id, assigned_at, coverage, matched_skills, reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = s.db.ExecContext(ctx,
		query,
		a.ID,
		projectID,
		a.UserID,
		a.AssignedAt,
		a.Coverage,
		matchedJSON,
		a.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}

	s.logger.Info("Assignment persisted",
		logger.String("assignment_id", a.ID),
		logger.String("user_id", a.UserID),
	)

	return nil
}

// RemoveByID deletes an assignment and returns the removed record.
func (s *PostgresAssignmentStore) RemoveByID(ctx context.Context, id string) (*domain.Assignment, error) {
	query := `
		DELETE FROM assignments
		WHERE id = $1
		RETURNING id, project_id, user_id, assigned_at, coverage, matched_skills, reason
	`

	row := s.db.QueryRowContext(ctx, query, id)

	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assignment %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Assignment removed",
		logger.String("assignment_id", id),
	)

	return a, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row rowScanner) (*domain.Assignment, error) {
	var a domain.Assignment
	var projectID sql.NullString
	var matchedJSON []byte

	err := row.Scan(
		&a.ID,
		&projectID,
		&a.UserID,
		&a.AssignedAt,
		&a.Coverage,
		&matchedJSON,
		&a.Reason,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan assignment: %w", err)
	}

	a.ProjectID = projectID.String

	if len(matchedJSON) > 0 {
		if unmarshalErr := json.Unmarshal(matchedJSON, &a.MatchedRequiredSkills); unmarshalErr != nil {
			return nil, fmt.Errorf("unmarshal matched skills: %w", unmarshalErr)
		}
	}

	return &a, nil
}
