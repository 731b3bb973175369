package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/fractal-key-kit/pkg/config"
	"github.com/shouni/fractal-key-kit/pkg/display"
	"github.com/shouni/fractal-key-kit/pkg/domain"
	"github.com/shouni/fractal-key-kit/pkg/generator"
	"github.com/shouni/fractal-key-kit/pkg/keygen"
	"github.com/shouni/fractal-key-kit/pkg/storage"
	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// app は設定から組み立てた依存関係一式です。
type app struct {
	cfg      config.Config
	random   keygen.RandomSource
	core     *generator.ImageCore
	renderer generator.ImageRenderer
	gen      *generator.Generator
}

func newApp(cfg config.Config) (*app, error) {
	var imageCache generator.ImageCacher
	if cfg.CacheTTL > 0 {
		imageCache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	core, err := generator.NewImageCore(storage.NewLocalStore(), imageCache, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}

	var httpClient httpkit.ClientInterface
	if cfg.Generator == generator.KindRemote {
		httpClient = newHTTPClient(cfg)
	}
	renderer, err := generator.NewRenderer(cfg.Generator, httpClient, cfg.RemoteURL)
	if err != nil {
		return nil, err
	}

	random := keygen.NewCryptoSource(cfg.RandomRetryDelay)
	gen, err := generator.NewGenerator(renderer, core, random, cfg.OutputPath())
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, random: random, core: core, renderer: renderer, gen: gen}, nil
}

// newHTTPClient は remote 用の HTTP クライアントを作ります。
// httpkit は既定でループバックやプライベートアドレスへの接続を拒否するため、
// 同じ LAN 上のピアに描画を任せるには検証を外します。
func newHTTPClient(cfg config.Config) httpkit.ClientInterface {
	if cfg.RemoteAllowPrivate {
		return httpkit.New(cfg.RemoteTimeout, httpkit.WithSkipNetworkValidation(true))
	}
	return httpkit.New(cfg.RemoteTimeout)
}

// controller は surface に表示する Controller を作成します。key が nil でなければ毎回その鍵を使います。
func (a *app) controller(surface display.Surface, key *domain.Key) (*display.Controller, error) {
	random := a.random
	opts := display.Options{UseKey: a.cfg.UseKey}
	if key != nil {
		random = fixedKey{key: *key}
		opts.UseKey = true
	}
	return display.NewController(a.gen, random, a.core, surface, a.cfg.OutputPath(), opts)
}

// localRenderer は /api/render に使う描画器です。remote 設定のときに自分へ戻らないよう fractal で描きます。
func (a *app) localRenderer() generator.ImageRenderer {
	if a.cfg.Generator == generator.KindRemote {
		return generator.FractalRenderer{}
	}
	return a.renderer
}

// fixedKey は常に同じ鍵を返す乱数源です。
type fixedKey struct {
	key domain.Key
}

func (f fixedKey) RandomBytes(ctx context.Context, n int) ([]byte, error) {
	if n != domain.KeySize {
		return nil, fmt.Errorf("fixed key has %d bytes, requested %d", domain.KeySize, n)
	}
	return append([]byte(nil), f.key[:]...), nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv})), nil
}
