package parser

import (
	"github.com/SVatsa12/teamforge/internal/domain"
	"github.com/SVatsa12/teamforge/internal/sources"
)

// Func parses one source's HTML body into normalized events.
type Func func(body []byte, src sources.Source) ([]domain.NormalizedEvent, error)

// Registry maps parser keys from the source configuration to
// source-specific parse functions. Sources without a registered key fall
// through to the generic extractor.
type Registry struct {
	parsers map[string]Func
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[string]Func),
	}
}

// Register binds a parser function to a key. Later registrations replace
// earlier ones.
func (r *Registry) Register(key string, fn Func) {
	r.parsers[key] = fn
}

// Lookup returns the parser registered under key.
func (r *Registry) Lookup(key string) (Func, bool) {
	fn, ok := r.parsers[key]
	return fn, ok
}
