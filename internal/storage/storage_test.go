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

func TestLocalStorage_SaveURLDelete(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root, "http://api.test/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "avatars/u1.png", strings.NewReader("png-bytes")))

	data, err := os.ReadFile(filepath.Join(root, "avatars", "u1.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	url := s.URL("avatars/u1.png")
	assert.Equal(t, "http://api.test/uploads/avatars/u1.png", url)

	key, ok := s.Key(url)
	require.True(t, ok)
	assert.Equal(t, "avatars/u1.png", key)

	require.NoError(t, s.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(root, "avatars", "u1.png"))
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is fine
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://api.test/uploads")
	require.NoError(t, err)

	for _, key := range []string{"../evil", "a/../../evil", "/abs", ""} {
		err := s.Save(context.Background(), key, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}

	_, ok := s.Key("https://lh3.googleusercontent.com/a/photo.jpg")
	assert.False(t, ok)
	_, ok = s.Key("http://api.test/uploads/../secret")
	assert.False(t, ok)
}

