package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, s *LocalStore, path string) []byte {
	t.Helper()
	rc, err := s.Open(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestLocalStore_Write(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore()

	t.Run("短いファイルで上書きしても古い末尾は残らないのだ", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.bmp")

		require.NoError(t, s.Write(ctx, path, []byte("0123456789abcdef")))
		require.NoError(t, s.Write(ctx, path, []byte("xyz")))

		assert.Equal(t, []byte("xyz"), readAll(t, s, path))
	})

	t.Run("出力ディレクトリが無ければ作るのだ", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache", "nested", "out.bmp")
		require.NoError(t, s.Write(ctx, path, []byte("data")))
		assert.Equal(t, []byte("data"), readAll(t, s, path))
	})

	t.Run("一時ファイルは残らないのだ", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.bmp")
		require.NoError(t, s.Write(ctx, path, []byte("data")))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestLocalStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore()
	path := filepath.Join(t.TempDir(), "out.bmp")

	t.Run("存在しないファイルの削除はエラーにならないのだ", func(t *testing.T) {
		assert.NoError(t, s.Delete(ctx, path))
	})

	t.Run("削除後は Open できないのだ", func(t *testing.T) {
		require.NoError(t, s.Write(ctx, path, []byte("data")))
		require.NoError(t, s.Delete(ctx, path))

		_, err := s.Open(ctx, path)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLocalStore_List(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore()
	dir := t.TempDir()
	require.NoError(t, s.Write(ctx, filepath.Join(dir, "a.bmp"), []byte("a")))
	require.NoError(t, s.Write(ctx, filepath.Join(dir, "b.bmp"), []byte("b")))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	var got []string
	err := s.List(ctx, dir, func(p string) error {
		got = append(got, filepath.Base(p))
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.bmp", "b.bmp"}, got)
}
