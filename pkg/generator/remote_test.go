package generator

import (
	"context"
	"fmt"
	"image"
	"testing"

	"github.com/shouni/fractal-key-kit/pkg/domain"
	"github.com/shouni/fractal-key-kit/pkg/imgutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteRenderer_Render(t *testing.T) {
	ctx := context.Background()
	const endpoint = "http://render.example.com/api/render"
	key := domain.Key{0xde, 0xad}

	t.Run("鍵を16進で送り、返ってきた画像をそのまま使うのだ", func(t *testing.T) {
		bmp, err := imgutil.EncodeBitmap(image.NewRGBA(image.Rect(0, 0, 4, 4)))
		require.NoError(t, err)
		client := &mockHTTPClient{data: bmp}
		r, err := NewRemoteRenderer(client, endpoint)
		require.NoError(t, err)

		out, err := r.Render(ctx, key)

		require.NoError(t, err)
		assert.Equal(t, bmp, out.Data)
		assert.Equal(t, "image/bmp", out.MimeType)
		assert.Equal(t, endpoint, client.lastURL)
		assert.Equal(t, RenderRequest{Key: key.Hex()}, client.lastBody)
	})

	t.Run("通信エラーは StatusRemoteFailure なのだ", func(t *testing.T) {
		r, err := NewRemoteRenderer(&mockHTTPClient{err: errBoom}, endpoint)
		require.NoError(t, err)

		_, err = r.Render(ctx, key)

		assert.Equal(t, domain.StatusRemoteFailure, StatusOf(err))
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("キャンセルは通信エラーではなく StatusCancelled なのだ", func(t *testing.T) {
		wrapped := fmt.Errorf("post %s: %w", endpoint, context.Canceled)
		r, err := NewRemoteRenderer(&mockHTTPClient{err: wrapped}, endpoint)
		require.NoError(t, err)

		_, err = r.Render(ctx, key)

		assert.Equal(t, domain.StatusCancelled, StatusOf(err))
	})

	t.Run("画像でない応答は StatusRemoteFailure なのだ", func(t *testing.T) {
		r, err := NewRemoteRenderer(&mockHTTPClient{data: []byte(`{"status":-120}`)}, endpoint)
		require.NoError(t, err)

		_, err = r.Render(ctx, key)

		assert.Equal(t, domain.StatusRemoteFailure, StatusOf(err))
	})

	t.Run("エンドポイントが空なら作成できないのだ", func(t *testing.T) {
		_, err := NewRemoteRenderer(&mockHTTPClient{}, "")
		assert.Error(t, err)
	})
}
