// Package allocator scores and ranks candidate users against a required
// skill set and manages persisted team assignments.
package allocator

import (
	"math"
	"sort"
	"strings"

	"github.com/SVatsa12/teamforge/internal/domain"
)

// Composite score coefficients. These are tuning constants, not derived
// values; changing them changes the ranking contract.
const (
	coverageWeight    = 100.0
	matchedWeight     = 2.0
	experienceFactor  = 1.2
	extraSkillsWeight = 0.1
	availablePenalty  = -0.5
)

// experienceWeights maps a normalized experience level to its score weight.
// Unrecognized levels fall back to "unknown".
var experienceWeights = map[string]float64{
	string(domain.ExperienceSenior):  3,
	string(domain.ExperienceMid):     2,
	string(domain.ExperienceJunior):  1,
	string(domain.ExperienceUnknown): 1,
}

// NormalizeSkills lower-cases, trims, and de-duplicates a skill list,
// preserving first-seen order. Comparison throughout the allocator is case-
// and whitespace-insensitive.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))

	for _, s := range skills {
		normalized := strings.ToLower(strings.TrimSpace(s))
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}

	return out
}

// ExperienceWeight returns the score weight for an experience level.
func ExperienceWeight(level string) float64 {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if w, ok := experienceWeights[normalized]; ok {
		return w
	}
	return experienceWeights[string(domain.ExperienceUnknown)]
}

// ScoreUser computes a candidate from a user and the normalized required
// skill list.
func ScoreUser(user domain.User, required []string) domain.Candidate {
	requiredSet := make(map[string]struct{}, len(required))
	for _, s := range required {
		requiredSet[s] = struct{}{}
	}

	userSkills := NormalizeSkills(user.Skills)

	matched := make([]string, 0, len(required))
	extras := 0

	for _, s := range userSkills {
		if _, ok := requiredSet[s]; ok {
			matched = append(matched, s)
		} else {
			extras++
		}
	}

	coverage := 0.0
	if len(required) > 0 {
		coverage = float64(len(matched)) / float64(len(required))
	}

	penalty := 0.0
	if !user.Available {
		penalty = availablePenalty
	}

	score := coverage*coverageWeight +
		float64(len(matched))*matchedWeight +
		ExperienceWeight(user.ExperienceLevel)*experienceFactor +
		float64(extras)*extraSkillsWeight +
		penalty

	return domain.Candidate{
		UserID:                user.ID,
		Name:                  user.Name,
		MatchedRequiredSkills: matched,
		MatchedCount:          len(matched),
		Coverage:              coverage,
		ExtraSkillsCount:      extras,
		ExperienceLevel:       user.ExperienceLevel,
		Available:             user.Available,
		CompositeScore:        round4(score),
	}
}

// Rank filters and orders candidates. Users with zero coverage that are also
// unavailable are dropped before ranking. Ordering is composite score,
// coverage, matched count, and experience weight (all descending), with name
// ascending as the final deterministic tie-break.
func Rank(users []domain.User, required []string) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(users))

	for _, u := range users {
		c := ScoreUser(u, required)
		if c.Coverage > 0 || c.Available {
			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		if a.Coverage != b.Coverage {
			return a.Coverage > b.Coverage
		}
		if a.MatchedCount != b.MatchedCount {
			return a.MatchedCount > b.MatchedCount
		}
		wa, wb := ExperienceWeight(a.ExperienceLevel), ExperienceWeight(b.ExperienceLevel)
		if wa != wb {
			return wa > wb
		}
		return a.Name < b.Name
	})

	return candidates
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
