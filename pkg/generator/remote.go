package generator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shouni/fractal-key-kit/pkg/domain"
	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// RenderRequest は /api/render に送るリクエストボディです。
type RenderRequest struct {
	Key string `json:"key"`
}

// RemoteRenderer は別インスタンスの /api/render に描画を委譲します。
type RemoteRenderer struct {
	httpClient httpkit.ClientInterface
	endpoint   string
}

// NewRemoteRenderer は httpClient と描画エンドポイントの URL から RemoteRenderer を作成します。
func NewRemoteRenderer(httpClient httpkit.ClientInterface, endpoint string) (*RemoteRenderer, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	return &RemoteRenderer{httpClient: httpClient, endpoint: endpoint}, nil
}

// Render は通信や応答の失敗を StatusRemoteFailure として返します。ctx のキャンセルは StatusCancelled です。
func (r *RemoteRenderer) Render(ctx context.Context, key domain.Key) (*ImageOutput, error) {
	data, err := r.httpClient.PostJSONAndFetchBytes(ctx, r.endpoint, RenderRequest{Key: key.Hex()})
	if err != nil {
		slog.WarnContext(ctx, "リモート描画に失敗しました", "endpoint", r.endpoint, "error", err)
		return nil, &StatusError{Status: statusFor(err, domain.StatusRemoteFailure), Key: key, Err: err}
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, &StatusError{
			Status: domain.StatusRemoteFailure,
			Key:    key,
			Err:    fmt.Errorf("response is not an image: %s", mimeType),
		}
	}
	return &ImageOutput{Data: data, MimeType: mimeType}, nil
}
