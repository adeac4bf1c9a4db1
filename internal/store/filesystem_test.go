package store

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/imgclass/internal/core/model"
)

func newTestStore(t *testing.T) *FilesystemStore {
	t.Helper()
	s, err := NewFilesystemStore(filepath.Join(t.TempDir(), "uploads"), nil)
	require.NoError(t, err)
	return s
}

func TestPutWritesFile(t *testing.T) {
	s := newTestStore(t)
	key := model.ContentKey("abc123.jpg")

	file, err := s.Put(context.Background(), key, []byte("image-bytes"))
	require.NoError(t, err)

	assert.True(t, file.Created)
	assert.Equal(t, key, file.Key)
	assert.Equal(t, filepath.Join(s.Dir(), "abc123.jpg"), file.Path)
	assert.EqualValues(t, len("image-bytes"), file.Size)

	got, err := os.ReadFile(file.Path)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(got))
}

func TestPutSameKeyTwiceIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := model.ContentKey("dup.png")

	first, err := s.Put(ctx, key, []byte("first"))
	require.NoError(t, err)
	second, err := s.Put(ctx, key, []byte("second"))
	require.NoError(t, err)

	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, first.Path, second.Path)

	got, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(got), "existing file must not be rewritten")

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPutConcurrentDuplicates(t *testing.T) {
	s := newTestStore(t)
	key := model.ContentKey("race.jpeg")
	data := []byte("same content every time")

	const writers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := s.Put(context.Background(), key, data)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if f.Created {
				created++
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, errs)
	assert.Equal(t, 1, created)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must be cleaned up")
	assert.Equal(t, "race.jpeg", entries[0].Name())

	got, err := os.ReadFile(filepath.Join(s.Dir(), "race.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestPutRejectsPathTraversal(t *testing.T) {
	s := newTestStore(t)
	for _, key := range []model.ContentKey{"", "../evil.jpg", "a/b.jpg", `a\b.jpg`, ".hidden.png", ".."} {
		_, err := s.Put(context.Background(), key, []byte("x"))
		require.Error(t, err, string(key))

		var se *StorageError
		require.True(t, errors.As(err, &se))
		assert.ErrorIs(t, err, ErrInvalidKey)
	}
}

func TestPutFailsWhenDirectoryIsGone(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.RemoveAll(s.Dir()))
	require.NoError(t, os.WriteFile(s.Dir(), []byte("not a dir"), 0o644))

	_, err := s.Put(context.Background(), "k.png", []byte("x"))
	require.Error(t, err)

	var se *StorageError
	assert.True(t, errors.As(err, &se))
}

func TestNewFilesystemStoreUnusablePath(t *testing.T) {
	base := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(base, []byte("x"), 0o644))

	_, err := NewFilesystemStore(filepath.Join(base, "uploads"), nil)
	require.Error(t, err)

	var se *StorageError
	assert.True(t, errors.As(err, &se))
}

func TestPutHonoursCancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Put(ctx, "k.png", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatAndOpen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Stat(ctx, "missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Open(ctx, "missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Put(ctx, "there.png", []byte("pixels"))
	require.NoError(t, err)

	info, err := s.Stat(ctx, "there.png")
	require.NoError(t, err)
	assert.EqualValues(t, 6, info.Size)
	assert.False(t, info.Created)

	rc, err := s.Open(ctx, "there.png")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(got))
}
