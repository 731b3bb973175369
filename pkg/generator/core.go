package generator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shouni/fractal-key-kit/pkg/domain"
	"github.com/shouni/fractal-key-kit/pkg/storage"
)

// ImageCore は出力先への書き込み・読み戻しとキャッシュを担当する基盤クラスです。
type ImageCore struct {
	store      storage.Store
	cache      ImageCacher
	expiration time.Duration
}

// NewImageCore は依存関係を注入して ImageCore を初期化します。
func NewImageCore(store storage.Store, cache ImageCacher, cacheTTL time.Duration) (*ImageCore, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	// cache は nil を許容（キャッシュなし動作）

	return &ImageCore{
		store:      store,
		cache:      cache,
		expiration: cacheTTL,
	}, nil
}

// Publish は画像を path に書き込み、キャッシュに保存します。
func (c *ImageCore) Publish(ctx context.Context, path string, key domain.Key, out *ImageOutput) (*domain.ImageResponse, error) {
	if err := c.store.Write(ctx, path, out.Data); err != nil {
		return nil, &StatusError{Status: domain.StatusWriteFailure, Key: key, Err: err}
	}
	c.remember(key, out)

	return &domain.ImageResponse{
		Data:     out.Data,
		MimeType: out.MimeType,
		UsedKey:  key,
		Path:     path,
		Status:   domain.StatusOK,
	}, nil
}

// Load は path の内容をすべて読み込みます。
func (c *ImageCore) Load(ctx context.Context, path string) ([]byte, error) {
	rc, err := c.store.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Clear は path の出力を削除します。
func (c *ImageCore) Clear(ctx context.Context, path string) error {
	return c.store.Delete(ctx, path)
}

func (c *ImageCore) cached(key domain.Key) (*ImageOutput, bool) {
	if c.cache == nil {
		return nil, false
	}
	val, ok := c.cache.Get(cacheKeyImage + key.Hex())
	if !ok {
		return nil, false
	}
	out, ok := val.(*ImageOutput)
	if !ok {
		slog.Warn("キャッシュデータが不正な型です", "type", fmt.Sprintf("%T", val))
		return nil, false
	}
	return out, true
}

func (c *ImageCore) remember(key domain.Key, out *ImageOutput) {
	if c.cache == nil || c.expiration <= 0 {
		return
	}
	c.cache.Set(cacheKeyImage+key.Hex(), out, c.expiration)
}
