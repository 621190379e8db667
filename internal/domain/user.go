// Package domain holds the core entities shared across the allocator and
// aggregator subsystems.
package domain

// ExperienceLevel classifies a user's seniority for scoring purposes.
type ExperienceLevel string

const (
	ExperienceSenior  ExperienceLevel = "senior"
	ExperienceMid     ExperienceLevel = "mid"
	ExperienceJunior  ExperienceLevel = "junior"
	ExperienceUnknown ExperienceLevel = "unknown"
)

// User is a candidate for team allocation.
type User struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Skills          []string `json:"skills"`
	ExperienceLevel string   `json:"experience_level"`
	Available       bool     `json:"available"`
}

// Project describes a project whose skill requirements drive allocation.
type Project struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}
