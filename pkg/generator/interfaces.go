package generator

import (
	"context"
	"time"

	"github.com/shouni/fractal-key-kit/pkg/domain"
)

// ImageGenerator は表示層が利用する統合窓口です。
// seed が nil の場合は生成側で鍵を引きます。
type ImageGenerator interface {
	Generate(ctx context.Context, seed *domain.Key) (*domain.ImageResponse, error)
}

// ImageRenderer は鍵から画像データを作るバックエンドです。
// 失敗時は *StatusError を返すことで結果コードを伝えます。
type ImageRenderer interface {
	Render(ctx context.Context, key domain.Key) (*ImageOutput, error)
}

// ImageCacher は、画像をキャッシュするためのインターフェースです。
type ImageCacher interface {
	// Get は、指定されたキーに紐づくアイテムを取得します。
	Get(key string) (any, bool)
	// Set は、指定されたキーと値、有効期限でアイテムを保存します。
	Set(key string, value any, d time.Duration)
}
