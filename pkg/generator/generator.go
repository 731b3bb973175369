package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/fractal-key-kit/pkg/domain"
	"github.com/shouni/fractal-key-kit/pkg/keygen"
	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// Generator は鍵の決定・描画・出力先への書き込みをまとめて行います。
type Generator struct {
	renderer ImageRenderer
	core     *ImageCore
	random   keygen.RandomSource
	path     string
}

// NewGenerator は Generator を初期化します。random は seed 無しで呼ばれたときに使います。
func NewGenerator(renderer ImageRenderer, core *ImageCore, random keygen.RandomSource, path string) (*Generator, error) {
	if renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	if core == nil {
		return nil, fmt.Errorf("core is required")
	}
	if random == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if path == "" {
		return nil, fmt.Errorf("output path is required")
	}
	return &Generator{
		renderer: renderer,
		core:     core,
		random:   random,
		path:     path,
	}, nil
}

// Path は出力先のパスを返します。
func (g *Generator) Path() string {
	return g.path
}

// Core は出力を扱う ImageCore を返します。
func (g *Generator) Core() *ImageCore {
	return g.core
}

// Generate は画像を生成して出力先に書き込みます。
// 失敗した場合は *StatusError を返し、出力先には何も書きません。
func (g *Generator) Generate(ctx context.Context, seed *domain.Key) (*domain.ImageResponse, error) {
	key, err := resolveKey(ctx, seed, g.random)
	if err != nil {
		return nil, &StatusError{Status: statusFor(err, domain.StatusRandomFailure), Err: err}
	}

	out, ok := g.core.cached(key)
	if ok {
		slog.DebugContext(ctx, "キャッシュ済みの画像を使います", "key", key.Hex())
	} else {
		out, err = g.renderer.Render(ctx, key)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) {
				se.Key = key
				return nil, se
			}
			return nil, &StatusError{Status: statusFor(err, domain.StatusWriteFailure), Key: key, Err: err}
		}
	}

	resp, err := g.core.Publish(ctx, g.path, key, out)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "画像を書き込みました", "path", g.path, "bytes", len(out.Data), "mime_type", out.MimeType)
	return resp, nil
}

// NewRenderer は kind に応じたバックエンドを返します。
// httpClient と remoteURL は KindRemote の場合のみ使います。
func NewRenderer(kind string, httpClient httpkit.ClientInterface, remoteURL string) (ImageRenderer, error) {
	switch kind {
	case KindFractal, "":
		return FractalRenderer{}, nil
	case KindIdenticon:
		return IdenticonRenderer{}, nil
	case KindRemote:
		r, err := NewRemoteRenderer(httpClient, remoteURL)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, fmt.Errorf("unknown generator kind: %q", kind)
}
