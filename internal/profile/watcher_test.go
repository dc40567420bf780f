package profile

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeFile(t, "profile.yaml", sampleYAML)
	initial, err := Load(path)
	require.NoError(t, err)

	holder := NewHolder(initial)
	changed := make(chan *Profile, 4)
	holder.OnChange(func(p *Profile) {
		select {
		case changed <- p:
		default:
		}
	})

	w, err := NewWatcher(path, holder, nil)
	require.NoError(t, err)
	w.debounceDur = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	updated := strings.Replace(sampleYAML, "name: Ada Example", "name: Ada Lovelace", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case p := <-changed:
		assert.Equal(t, "Ada Lovelace", p.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("profile was not reloaded")
	}
	assert.Equal(t, "Ada Lovelace", holder.Get().Name)
}

func TestWatcher_KeepsPreviousOnInvalidFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeFile(t, "profile.yaml", sampleYAML)
	initial, err := Load(path)
	require.NoError(t, err)
	holder := NewHolder(initial)

	w, err := NewWatcher(path, holder, nil)
	require.NoError(t, err)
	w.debounceDur = 10 * time.Millisecond

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, os.WriteFile(path, []byte("role: no name here\n"), 0o644))

	time.Sleep(200 * time.Millisecond)
	w.Stop()

	assert.Same(t, initial, holder.Get())
}

func TestWatcher_StartFailureLeavesStopUsable(t *testing.T) {
	defer goleak.VerifyNone(t)

	missing := t.TempDir() + "/gone/profile.yaml"
	w, err := NewWatcher(missing, NewHolder(nil), nil)
	require.NoError(t, err)

	require.Error(t, w.Start(context.Background()))

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop blocked after a failed Start")
	}
}
