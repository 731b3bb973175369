// Package display は鍵画像の生成と表示を 1 サイクルずつ進めるコントローラーです。
//
// 1 サイクルは「出力ファイルの削除 → 鍵の取得 → 生成 → 読み込みとデコード → 表示」で、
// 同時に動くサイクルは常に 1 つだけです。
package display

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shouni/fractal-key-kit/pkg/domain"
	"github.com/shouni/fractal-key-kit/pkg/generator"
	"github.com/shouni/fractal-key-kit/pkg/imgutil"
	"github.com/shouni/fractal-key-kit/pkg/keygen"
	"golang.org/x/sync/semaphore"
)

// ErrBusy は生成中に次のサイクルを要求した場合に返されます。
var ErrBusy = errors.New("generation already in progress")

// Output は出力ファイルの削除と読み込みを行います。generator.ImageCore が実装しています。
type Output interface {
	Clear(ctx context.Context, path string) error
	Load(ctx context.Context, path string) ([]byte, error)
}

// Outcome は 1 サイクルの結果です。
type Outcome struct {
	RunID  string
	KeyHex string
	Status domain.Status
	Text   string // Surface に最後に出した状態テキスト
	Shown  bool   // 画像を Surface に表示したか
	Err    error
}

// Options はコントローラーの動作設定です。
type Options struct {
	// UseKey が true なら毎回鍵を引いて表示し、シードとして渡します。
	// false なら鍵の決定は生成側に任せます。
	UseKey bool
}

// Controller は生成と表示のサイクルを管理します。
type Controller struct {
	gen     generator.ImageGenerator
	random  keygen.RandomSource
	output  Output
	surface Surface
	path    string
	opts    Options

	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewController は依存関係を注入して Controller を初期化します。
func NewController(gen generator.ImageGenerator, random keygen.RandomSource, output Output, surface Surface, path string, opts Options) (*Controller, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if opts.UseKey && random == nil {
		return nil, fmt.Errorf("random source is required when UseKey is set")
	}
	if output == nil {
		return nil, fmt.Errorf("output is required")
	}
	if surface == nil {
		return nil, fmt.Errorf("surface is required")
	}
	if path == "" {
		return nil, fmt.Errorf("output path is required")
	}
	return &Controller{
		gen:     gen,
		random:  random,
		output:  output,
		surface: surface,
		path:    path,
		opts:    opts,
		sem:     semaphore.NewWeighted(1),
	}, nil
}

// Activate は最初のサイクルを開始します。Trigger と同じです。
func (c *Controller) Activate(ctx context.Context) (<-chan Outcome, error) {
	return c.Trigger(ctx)
}

// Tap は画像がタップされたときの再生成です。Trigger と同じです。
func (c *Controller) Tap(ctx context.Context) (<-chan Outcome, error) {
	return c.Trigger(ctx)
}

// Trigger はサイクルをバックグラウンドで開始し、結果をちょうど 1 回送るチャネルを返します。
// 既にサイクルが動いている場合は ErrBusy を返します。
func (c *Controller) Trigger(ctx context.Context) (<-chan Outcome, error) {
	if !c.sem.TryAcquire(1) {
		return nil, ErrBusy
	}

	done := make(chan Outcome, 1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		out := c.cycle(ctx)
		c.sem.Release(1)
		done <- out
		close(done)
	}()
	return done, nil
}

// Run はサイクルを同期的に実行します。既にサイクルが動いている場合は ErrBusy を返します。
func (c *Controller) Run(ctx context.Context) (Outcome, error) {
	if !c.sem.TryAcquire(1) {
		return Outcome{}, ErrBusy
	}
	defer c.sem.Release(1)
	return c.cycle(ctx), nil
}

// Busy はサイクルが動いているかどうかを返します。
func (c *Controller) Busy() bool {
	if c.sem.TryAcquire(1) {
		c.sem.Release(1)
		return false
	}
	return true
}

// Wait はバックグラウンドのサイクルがすべて終わるまで待ちます。
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) cycle(ctx context.Context) Outcome {
	out := Outcome{RunID: uuid.NewString()}
	logger := slog.With("run_id", out.RunID, "path", c.path)

	// 古い画像を表示しないよう、先に出力を消しておく
	if err := c.output.Clear(ctx, c.path); err != nil {
		logger.WarnContext(ctx, "出力ファイルの削除に失敗しました", "error", err)
	}

	var seed *domain.Key
	if c.opts.UseKey {
		key, err := keygen.NewKey(ctx, c.random)
		if err != nil {
			logger.ErrorContext(ctx, "鍵の取得に失敗しました", "error", err)
			return c.fail(out, domain.StatusRandomFailure, fmt.Sprintf("random key failed: %v", err), err)
		}
		seed = &key
		out.KeyHex = key.Hex()
		// 画像が差し替わるまでは、前の画像と新しい鍵を同じラベルで並べない
		out.Text = "generating: " + out.KeyHex
		c.surface.ShowStatus(out.Text)
	}

	resp, err := c.gen.Generate(ctx, seed)
	if err == nil && !resp.Status.OK() {
		err = &generator.StatusError{Status: resp.Status, Key: resp.UsedKey}
	}
	if err != nil {
		var se *generator.StatusError
		if out.KeyHex == "" && errors.As(err, &se) && se.Key != (domain.Key{}) {
			out.KeyHex = se.Key.Hex()
		}
		status := generator.StatusOf(err)
		logger.WarnContext(ctx, "画像生成に失敗しました", "key", out.KeyHex, "code", int(status), "error", err)
		return c.fail(out, status, failureText(out.KeyHex, status), err)
	}
	out.KeyHex = resp.UsedKey.Hex()
	out.Status = domain.StatusOK

	img, err := c.load(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "画像の読み込みに失敗しました", "error", err)
		out.Err = err
		out.Text = fmt.Sprintf("display failed: %v", err)
		c.surface.ShowStatus(out.Text)
		return out
	}

	c.surface.ShowImage(img)
	out.Shown = true
	out.Text = "key: " + out.KeyHex
	c.surface.ShowStatus(out.Text)
	logger.InfoContext(ctx, "画像を表示しました", "key", out.KeyHex)
	return out
}

func (c *Controller) load(ctx context.Context) (image.Image, error) {
	data, err := c.output.Load(ctx, c.path)
	if err != nil {
		return nil, err
	}
	img, _, err := imgutil.Decode(data)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func failureText(keyHex string, status domain.Status) string {
	if keyHex == "" {
		return fmt.Sprintf("generation failed: code=%d", status)
	}
	return fmt.Sprintf("generation failed: key=%s code=%d", keyHex, status)
}

func (c *Controller) fail(out Outcome, status domain.Status, text string, err error) Outcome {
	out.Status = status
	out.Text = text
	out.Err = err
	c.surface.ShowStatus(text)
	return out
}
