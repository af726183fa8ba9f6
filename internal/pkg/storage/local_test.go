package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalArchive_SaveAndExists(t *testing.T) {
	archive, err := NewLocalArchive(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path := "100234/2026-08-29/TIME_IN.jpg"
	saved, err := archive.Save(ctx, path, strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(path), saved)

	exists, err := archive.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = archive.Exists(ctx, "100234/2026-08-29/TIME_OUT.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalArchive_RejectsTraversal(t *testing.T) {
	archive, err := NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	_, err = archive.Save(context.Background(), "../../etc/passwd", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestLocalArchive_PruneRemovesOldDays(t *testing.T) {
	base := t.TempDir()
	archive, err := NewLocalArchive(base)
	require.NoError(t, err)
	ctx := context.Background()

	for _, day := range []string{"2026-07-01", "2026-08-15", "2026-08-29"} {
		_, err := archive.Save(ctx, "100234/"+day+"/TIME_IN.jpg", strings.NewReader("jpeg"))
		require.NoError(t, err)
	}

	require.NoError(t, archive.Prune(ctx, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)))

	_, err = os.Stat(filepath.Join(base, "100234", "2026-07-01"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "100234", "2026-08-15"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "100234", "2026-08-29"))
	assert.NoError(t, err, "days on or after the cutoff are kept")
}
