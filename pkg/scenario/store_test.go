package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: first\n"), 0o644))

	store, err := NewStore(path, nil)
	require.NoError(t, err)
	require.Equal(t, "first", store.Current().Name)

	require.NoError(t, os.WriteFile(path, []byte("divisions: {items: [{division: X, students: -1}]}\n"), 0o644))
	require.Error(t, store.Reload())
	require.Equal(t, "first", store.Current().Name)
}

func TestStoreWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: first\n"), 0o644))

	store, err := NewStore(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, store.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte("name: second\n"), 0o644))
	require.Eventually(t, func() bool {
		return store.Current().Name == "second"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestStoreDefaultWatchIsNoop(t *testing.T) {
	store, err := NewStore("", nil)
	require.NoError(t, err)
	require.NoError(t, store.Watch(context.Background()))
	require.Len(t, store.Current().Divisions.Items, 3)
}
