package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStorageStoreAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStorage(dir, "/uploads/")
	require.NoError(t, err)

	obj, err := s.Store(context.Background(), []byte("png-bytes"), "png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(obj.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(obj.RefID, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, obj.RefID))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, s.Delete(context.Background(), obj.RefID))
	_, err = os.Stat(filepath.Join(dir, obj.RefID))
	assert.True(t, os.IsNotExist(err))
}

func TestDiskStorageStoreUniqueNames(t *testing.T) {
	s, err := NewDiskStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	a, err := s.Store(context.Background(), []byte("one"), ".jpg")
	require.NoError(t, err)
	b, err := s.Store(context.Background(), []byte("two"), ".jpg")
	require.NoError(t, err)
	assert.NotEqual(t, a.RefID, b.RefID)
}

func TestDiskStorageDeleteTolerant(t *testing.T) {
	s, err := NewDiskStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	// missing object: not an error
	assert.NoError(t, s.Delete(context.Background(), "gone.png"))
	// path traversal attempts are ignored, never executed
	assert.NoError(t, s.Delete(context.Background(), "../escape.png"))
	assert.NoError(t, s.Delete(context.Background(), ""))
}
