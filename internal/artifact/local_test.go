package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePublishRetrieve(t *testing.T) {
	ctx := context.Background()

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	payload := filepath.Join(t.TempDir(), "app-1.0.0.jar")
	require.NoError(t, os.WriteFile(payload, []byte("jar-bytes"), 0o644))

	h, err := store.Publish(ctx, "app-jar", payload)
	require.NoError(t, err)
	assert.Equal(t, "app-jar", h.Name)
	assert.Equal(t, int64(9), h.Size)
	assert.Len(t, h.Digest, 64)

	dest := t.TempDir()
	got, err := store.Retrieve(ctx, h, dest)
	require.NoError(t, err)

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, []byte("jar-bytes"), data)
}

func TestLocalStoreRejectsEmptyPayload(t *testing.T) {
	ctx := context.Background()

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	payload := filepath.Join(t.TempDir(), "empty.jar")
	require.NoError(t, os.WriteFile(payload, nil, 0o644))

	_, err = store.Publish(ctx, "app-jar", payload)
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestLocalStoreRetrieveMissing(t *testing.T) {
	ctx := context.Background()

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Retrieve(ctx, &Handle{Name: "app-jar", Key: "app-jar/missing.jar"}, t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}
