package web

import (
	"net/http"
	"testing"

	"github.com/Zachkp/folio/internal/profile"
	"github.com/Zachkp/folio/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectSearches_SharesNormalizedQueries(t *testing.T) {
	ps := newProjectSearches(profile.NewHolder(testProfile()))

	a := ps.get("Go")
	assert.Same(t, a, ps.get("  go "))
	assert.NotSame(t, a, ps.get("math"))

	got, computed := a.Results()
	assert.True(t, computed)
	require.Len(t, got, 1)
	assert.Equal(t, "Loom", got[0].Name)
}

func TestProjectSearches_BoundedCache(t *testing.T) {
	ps := newProjectSearches(profile.NewHolder(testProfile()))
	for i := 0; i < maxCachedSearches+10; i++ {
		ps.get(string(rune('a'+i%26)) + string(rune('a'+i/26)))
	}
	assert.LessOrEqual(t, len(ps.byQuery), maxCachedSearches)
}

func TestProjects_FollowProfileReload(t *testing.T) {
	holder := profile.NewHolder(testProfile())
	ts := newTestServer(t, func(o *Options) { o.Profiles = holder })

	body := ts.do(request{path: "/projects?q=loom"}).Body.String()
	assert.Contains(t, body, "Loom")

	reloaded := testProfile()
	reloaded.Projects = []project.Project{
		{Name: "Difference Engine", Description: "Tables by finite differences", Tags: []string{"go"}},
	}
	holder.Set(reloaded)

	rec := ts.do(request{path: "/projects?q=loom"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No projects found matching your search.")

	body = ts.do(request{path: "/projects?q=GO"}).Body.String()
	assert.Contains(t, body, "Difference Engine")
	assert.NotContains(t, body, "Loom")
}
