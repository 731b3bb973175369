// Package keygen は画像生成に使う乱数鍵を提供します。
package keygen

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shouni/fractal-key-kit/pkg/domain"
)

const (
	DefaultMaxAttempts = 4
	DefaultRetryDelay  = time.Second
)

// RandomSource は n バイトの乱数を返す外部の乱数源です。
type RandomSource interface {
	RandomBytes(ctx context.Context, n int) ([]byte, error)
}

// CryptoSource は crypto/rand を使う RandomSource です。
// 読み取りに失敗した場合は RetryDelay おきに MaxAttempts 回まで試します。
type CryptoSource struct {
	Reader      io.Reader
	MaxAttempts int
	RetryDelay  time.Duration
}

// NewCryptoSource は retryDelay を待ち時間とする CryptoSource を返します。
func NewCryptoSource(retryDelay time.Duration) *CryptoSource {
	return &CryptoSource{
		Reader:      rand.Reader,
		MaxAttempts: DefaultMaxAttempts,
		RetryDelay:  retryDelay,
	}
}

// RandomBytes は n バイトの乱数を返します。n が 1 未満の場合はエラーです。
func (s *CryptoSource) RandomBytes(ctx context.Context, n int) ([]byte, error) {
	if n < 1 {
		return nil, fmt.Errorf("random length must be positive: %d", n)
	}

	reader := s.Reader
	if reader == nil {
		reader = rand.Reader
	}
	attempts := s.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	buf := make([]byte, n)
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.RetryDelay):
			}
		}
		if _, err := io.ReadFull(reader, buf); err != nil {
			lastErr = err
			slog.WarnContext(ctx, "乱数の読み取りに失敗しました。再試行します", "attempt", i+1, "error", err)
			continue
		}
		return buf, nil
	}
	return nil, fmt.Errorf("乱数の取得に失敗しました (%d 回試行): %w", attempts, lastErr)
}

// NewKey は src から 32 バイトの鍵を引きます。
func NewKey(ctx context.Context, src RandomSource) (domain.Key, error) {
	if src == nil {
		return domain.Key{}, fmt.Errorf("random source is required")
	}
	b, err := src.RandomBytes(ctx, domain.KeySize)
	if err != nil {
		return domain.Key{}, err
	}
	return domain.KeyFromBytes(b)
}
