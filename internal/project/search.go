package project

import "sync"

// Search keeps the visible subset of a project list for the current query.
// Results are recomputed lazily, only when the query or the list changed
// since the last computation.
type Search struct {
	mu         sync.Mutex
	projects   []Project
	generation uint64
	query      string

	computed    bool
	computedGen uint64
	computedQ   string
	results     []Project
}

// NewSearch starts a search over projects with an empty query.
func NewSearch(projects []Project) *Search {
	return &Search{projects: projects}
}

// SetQuery replaces the query.
func (s *Search) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
}

// Query returns the current query.
func (s *Search) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// SetProjects replaces the underlying list, for example after the profile
// file was reloaded.
func (s *Search) SetProjects(projects []Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = projects
	s.generation++
}

// Results returns the filtered projects and whether a computation has run.
// The first call always computes, so the flag is true after it returns.
func (s *Search) Results() ([]Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.computed || s.computedGen != s.generation || s.computedQ != s.query {
		s.results = Filter(s.projects, s.query)
		s.computed = true
		s.computedGen = s.generation
		s.computedQ = s.query
	}
	return s.results, s.computed
}

// NoMatches is true only once a computation has produced zero results for
// the current inputs.
func (s *Search) NoMatches() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.computed && s.computedGen == s.generation &&
		s.computedQ == s.query && len(s.results) == 0
}
