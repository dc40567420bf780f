package web

import (
	"strings"
	"sync"

	"github.com/Zachkp/folio/internal/profile"
	"github.com/Zachkp/folio/internal/project"
)

const maxCachedSearches = 128

// projectSearches keeps one project.Search per normalized query so repeated
// queries reuse their results. A profile reload hands the new list to every
// cached search, which recomputes on its next read.
type projectSearches struct {
	mu       sync.Mutex
	projects []project.Project
	byQuery  map[string]*project.Search
}

func newProjectSearches(holder *profile.Holder) *projectSearches {
	ps := &projectSearches{
		projects: holder.Get().Projects,
		byQuery:  make(map[string]*project.Search),
	}
	holder.OnChange(func(p *profile.Profile) {
		ps.setProjects(p.Projects)
	})
	return ps
}

// get returns the search for query. Queries differing only in case or
// surrounding whitespace share one entry.
func (ps *projectSearches) get(query string) *project.Search {
	key := strings.ToLower(strings.TrimSpace(query))

	ps.mu.Lock()
	defer ps.mu.Unlock()
	if s, ok := ps.byQuery[key]; ok {
		return s
	}
	if len(ps.byQuery) >= maxCachedSearches {
		ps.byQuery = make(map[string]*project.Search)
	}
	s := project.NewSearch(ps.projects)
	s.SetQuery(key)
	ps.byQuery[key] = s
	return s
}

func (ps *projectSearches) setProjects(projects []project.Project) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.projects = projects
	for _, s := range ps.byQuery {
		s.SetProjects(projects)
	}
}
