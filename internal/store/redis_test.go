package store

import (
	"context"
	"testing"
	"time"

	"github.com/Zachkp/folio/internal/theme"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisPreferences, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := NewRedisPreferences(context.Background(), "redis://"+mr.Addr(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r, mr
}

func TestRedisPreferences_GetSet(t *testing.T) {
	r, mr := setupTestRedis(t)
	ctx := context.Background()
	prefs := r.Preferences("visitor-9")

	_, err := prefs.Get(ctx, theme.StorageKey)
	require.ErrorIs(t, err, theme.ErrNotFound)

	require.NoError(t, prefs.Set(ctx, theme.StorageKey, "dark"))
	v, err := prefs.Get(ctx, theme.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, "dark", v)

	stored, err := mr.Get("folio:pref:visitor-9:theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", stored)
	assert.Equal(t, time.Hour, mr.TTL("folio:pref:visitor-9:theme"))
}

func TestRedisPreferences_Expiry(t *testing.T) {
	r, mr := setupTestRedis(t)
	ctx := context.Background()
	prefs := r.Preferences("v")

	require.NoError(t, prefs.Set(ctx, theme.StorageKey, "light"))
	mr.FastForward(2 * time.Hour)

	_, err := prefs.Get(ctx, theme.StorageKey)
	assert.ErrorIs(t, err, theme.ErrNotFound)
}

func TestRedisPreferences_OutageDegradesTheme(t *testing.T) {
	r, mr := setupTestRedis(t)
	ctx := context.Background()
	prefs := r.Preferences("v")

	p := theme.New(ctx, prefs, theme.NewSchemeSignalWith(theme.Dark), nil)
	require.True(t, p.Persistent())

	mr.Close()
	assert.Equal(t, theme.Light, p.Toggle(ctx))
	assert.False(t, p.Persistent())
	assert.Equal(t, theme.Light, p.Active())
}

func TestNewRedisPreferences_BadURL(t *testing.T) {
	_, err := NewRedisPreferences(context.Background(), "://nope", time.Hour)
	assert.ErrorContains(t, err, "parse redis url")
}

func TestRedisPreferences_DeletePreferences(t *testing.T) {
	r, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Preferences("alice").Set(ctx, theme.StorageKey, "dark"))
	require.NoError(t, r.Preferences("bob").Set(ctx, theme.StorageKey, "light"))

	require.NoError(t, r.DeletePreferences(ctx, "alice"))
	assert.False(t, mr.Exists("folio:pref:alice:theme"))

	_, err := r.Preferences("alice").Get(ctx, theme.StorageKey)
	assert.ErrorIs(t, err, theme.ErrNotFound)
	v, err := r.Preferences("bob").Get(ctx, theme.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, "light", v)

	require.NoError(t, r.DeletePreferences(ctx, "nobody"))
}
