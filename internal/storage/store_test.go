package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)
	return s
}

func TestSaveCarImage(t *testing.T) {
	s := newTestStore(t)

	url, err := s.SaveCarImage(7, 42, "front.JPG", strings.NewReader("fake-jpeg-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/7/42/"), "url namespaced by user and car: %s", url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), "extension lowercased: %s", url)

	rel := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "fake-jpeg-bytes", string(data))
}

func TestSaveCarImageUniqueNames(t *testing.T) {
	s := newTestStore(t)

	first, err := s.SaveCarImage(1, 1, "a.png", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := s.SaveCarImage(1, 1, "a.png", strings.NewReader("two"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "same filename must never collide")
}

func TestSaveCarImageRejectsNonImages(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"malware.exe", "doc.pdf", "noext", "script.php"} {
		_, err := s.SaveCarImage(1, 1, name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrUnsupportedType, "filename %q", name)
	}
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)

	url, err := s.SaveCarImage(3, 9, "b.webp", strings.NewReader("bytes"))
	require.NoError(t, err)
	require.NoError(t, s.Remove(url))

	rel := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
	_, err = os.Stat(filepath.Join(s.root, filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err), "file should be gone")
}

func TestRemoveIgnoresForeignAndMissing(t *testing.T) {
	s := newTestStore(t)

	assert.NoError(t, s.Remove("https://elsewhere.example.com/x.jpg"), "foreign urls ignored")
	assert.NoError(t, s.Remove("http://localhost:8080/uploads/1/1/missing.jpg"), "missing files ignored")
	assert.NoError(t, s.Remove("http://localhost:8080/uploads/../../etc/passwd"), "escapes refused")
}
