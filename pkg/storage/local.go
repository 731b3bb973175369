// Package storage は生成画像の出力先を扱います。
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// Store は出力画像の読み書きと削除を行います。読み取りは remoteio.InputReader と同じ形です。
type Store interface {
	remoteio.InputReader
	Write(ctx context.Context, uri string, data []byte) error
	Delete(ctx context.Context, uri string) error
}

// LocalStore はローカルファイルシステム上の Store です。
type LocalStore struct {
	perm fs.FileMode
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore は LocalStore を作成します。
func NewLocalStore() *LocalStore {
	return &LocalStore{perm: 0o644}
}

// Open はファイルを読み取り用に開きます。
func (s *LocalStore) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(uri)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", uri, err)
	}
	return f, nil
}

// List はディレクトリ直下の通常ファイルのパスを fn に渡します。
func (s *LocalStore) List(ctx context.Context, uri string, fn func(string) error) error {
	entries, err := os.ReadDir(uri)
	if err != nil {
		return fmt.Errorf("list %s: %w", uri, err)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !e.Type().IsRegular() {
			continue
		}
		if err := fn(filepath.Join(uri, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Write は一時ファイルに書いてから rename で置き換えます。
// 以前のファイルの方が長くても末尾が残ることはありません。
func (s *LocalStore) Write(ctx context.Context, uri string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(uri)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(uri)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", uri, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", uri, err)
	}
	if err := os.Chmod(tmpName, s.perm); err != nil {
		return fmt.Errorf("chmod %s: %w", uri, err)
	}
	if err := os.Rename(tmpName, uri); err != nil {
		return fmt.Errorf("replace %s: %w", uri, err)
	}
	return nil
}

// Delete はファイルを削除します。存在しない場合はエラーにしません。
func (s *LocalStore) Delete(ctx context.Context, uri string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(uri); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", uri, err)
	}
	return nil
}
