package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	ctx := context.Background()

	level, err := OpenLevelMemory()
	require.NoError(t, err)

	stores := map[string]Store{
		"leveldb": level,
		"memory":  NewMemoryStore(),
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			_, err := s.Get(ctx, "lastTxHash")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "lastTxHash", "0xaaa"))
			require.NoError(t, s.Set(ctx, "lastTxHash", "0xbbb"))

			got, err := s.Get(ctx, "lastTxHash")
			require.NoError(t, err)
			assert.Equal(t, "0xbbb", got)
		})
	}
}

func TestLevelStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "console.db")

	s, err := OpenLevel(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "lastTxHash", "0xfeed"))
	require.NoError(t, s.Close())

	reopened, err := OpenLevel(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "lastTxHash")
	require.NoError(t, err)
	assert.Equal(t, "0xfeed", got)
}
