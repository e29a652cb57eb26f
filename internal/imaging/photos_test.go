package imaging

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoStoreSaveAndRemove(t *testing.T) {
	photos, err := NewPhotoStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	name, err := photos.Save(bytes.NewReader(testPNG(20, 20)))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".jpg"))

	path, err := photos.Path(name)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)

	require.NoError(t, photos.Remove(name))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing again, or removing nothing, is fine.
	assert.NoError(t, photos.Remove(name))
	assert.NoError(t, photos.Remove(""))
}

func TestPhotoStoreUniqueNames(t *testing.T) {
	photos, err := NewPhotoStore(t.TempDir())
	require.NoError(t, err)

	a, err := photos.Save(bytes.NewReader(testJPEG(10, 10)))
	require.NoError(t, err)
	b, err := photos.Save(bytes.NewReader(testJPEG(10, 10)))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPhotoStoreRejectsBadInput(t *testing.T) {
	photos, err := NewPhotoStore(t.TempDir())
	require.NoError(t, err)

	_, err = photos.Save(strings.NewReader("plain text"))
	assert.Error(t, err)

	for _, name := range []string{"", "../secret", "a/b.jpg", ".hidden", ".."} {
		_, err := photos.Path(name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}
