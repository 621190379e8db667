package domain

import "time"

// Candidate is a scored user produced by an allocation pass. Candidates are
// ephemeral: only their ordering is meaningful, and they are never persisted.
type Candidate struct {
	UserID                string   `json:"user_id"`
	Name                  string   `json:"name"`
	MatchedRequiredSkills []string `json:"matched_required_skills"`
	MatchedCount          int      `json:"matched_count"`
	Coverage              float64  `json:"coverage"`
	ExtraSkillsCount      int      `json:"extra_skills_count"`
	ExperienceLevel       string   `json:"experience_level"`
	Available             bool     `json:"available"`
	CompositeScore        float64  `json:"composite_score"`
}

// Assignment records a persisted team placement. Assignments are append-only:
// they are never updated, only created and deleted by id.
type Assignment struct {
	ID                    string    `json:"id"`
	ProjectID             string    `json:"project_id,omitempty"`
	UserID                string    `json:"user_id"`
	AssignedAt            time.Time `json:"assigned_at"`
	Coverage              float64   `json:"coverage"`
	MatchedRequiredSkills []string  `json:"matched_required_skills"`
	Reason                string    `json:"reason,omitempty"`
}

// AllocationResult is the outcome of a single allocation call.
type AllocationResult struct {
	RequiredSkills []string    `json:"required_skills"`
	TeamSize       int         `json:"team_size"`
	Candidates     []Candidate `json:"candidates"`
	Timestamp      time.Time   `json:"timestamp"`
}
