package web

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/Zachkp/folio/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeToggle_UsesPostedSystemModeWithoutHint(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(request{
		method: http.MethodPost,
		path:   "/theme/toggle",
		form:   url.Values{systemField: {"dark"}},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	c := cookieNamed(rec, "theme")
	require.NotNil(t, c)
	assert.Equal(t, "light", c.Value, "toggle flips the dark page the visitor was looking at")
}

func TestThemeToggle_HintWinsOverPostedSystemMode(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(request{
		method:  http.MethodPost,
		path:    "/theme/toggle",
		form:    url.Values{systemField: {"dark"}},
		headers: map[string]string{colorSchemeHint: `"light"`},
	})
	assert.Equal(t, "dark", cookieNamed(rec, "theme").Value)
}

func TestThemeToggle_StoredChoiceIgnoresPostedSystemMode(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(request{
		method:  http.MethodPost,
		path:    "/theme/toggle",
		form:    url.Values{systemField: {"light"}},
		cookies: []*http.Cookie{{Name: "theme", Value: "light"}},
	})
	assert.Equal(t, "dark", cookieNamed(rec, "theme").Value)
}

func TestThemeToggle_FormCarriesSystemField(t *testing.T) {
	ts := newTestServer(t, nil)
	body := ts.do(request{path: "/"}).Body.String()
	assert.Contains(t, body, `<input type="hidden" name="system" value="">`)
	assert.Contains(t, body, `class="icon-when-dark"`)
	assert.Contains(t, body, `class="icon-when-light"`)
}

func TestPrivacy_AlignsWithSystemScheme(t *testing.T) {
	ts := newTestServer(t, nil)

	body := ts.do(request{path: "/privacy"}).Body.String()
	assert.Contains(t, body, `data-theme-stored="false"`)
	assert.Contains(t, body, `prefers-color-scheme: dark`)

	body = ts.do(request{
		path:    "/privacy",
		cookies: []*http.Cookie{{Name: "theme", Value: "dark"}},
	}).Body.String()
	assert.Contains(t, body, `<html lang="en" class="dark" data-theme-stored="true"`)
}

func TestForgetPreferences_Cookie(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(request{
		method:  http.MethodPost,
		path:    "/privacy/forget",
		cookies: []*http.Cookie{{Name: "theme", Value: "dark"}},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/privacy?forgotten=1", rec.Header().Get("Location"))
	c := cookieNamed(rec, "theme")
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)

	assert.Contains(t, ts.do(request{path: "/privacy?forgotten=1"}).Body.String(), "Your theme choice was removed")
}

func TestForgetPreferences_ServerSide(t *testing.T) {
	backends := map[string]func(t *testing.T) PreferenceBackend{
		"memory": func(*testing.T) PreferenceBackend { return NewMemoryPreferences() },
		"sqlite": func(t *testing.T) PreferenceBackend { return newSQLite(t) },
	}
	for name, mk := range backends {
		t.Run(name, func(t *testing.T) {
			prefs := mk(t)
			ts := newTestServer(t, func(o *Options) { o.Preferences = prefs })

			vid := cookieNamed(ts.do(request{path: "/"}), visitorCookie)
			require.NotNil(t, vid)
			ts.do(request{method: http.MethodPost, path: "/theme/toggle", cookies: []*http.Cookie{vid}})

			_, err := prefs.Preferences(vid.Value).Get(context.Background(), theme.StorageKey)
			require.NoError(t, err)

			rec := ts.do(request{method: http.MethodPost, path: "/privacy/forget", cookies: []*http.Cookie{vid}})
			assert.Equal(t, http.StatusSeeOther, rec.Code)

			_, err = prefs.Preferences(vid.Value).Get(context.Background(), theme.StorageKey)
			assert.ErrorIs(t, err, theme.ErrNotFound)

			rec = ts.do(request{
				path:    "/",
				headers: map[string]string{colorSchemeHint: `"dark"`},
				cookies: []*http.Cookie{vid},
			})
			assert.Contains(t, rec.Body.String(), `data-theme-stored="false"`)
		})
	}
}
