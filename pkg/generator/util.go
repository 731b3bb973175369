package generator

import (
	"context"
	"errors"

	"github.com/shouni/fractal-key-kit/pkg/domain"
	"github.com/shouni/fractal-key-kit/pkg/keygen"
)

// resolveKey は seed があればそれを、無ければ src から引いた鍵を返します。
func resolveKey(ctx context.Context, seed *domain.Key, src keygen.RandomSource) (domain.Key, error) {
	if seed != nil {
		return *seed, nil
	}
	return keygen.NewKey(ctx, src)
}

// SeedFromBytes はバイト列をシードに変換します。長さが 32 でなければ StatusBadKeyLength です。
func SeedFromBytes(b []byte) (*domain.Key, error) {
	k, err := domain.KeyFromBytes(b)
	if err != nil {
		return nil, &StatusError{Status: domain.StatusBadKeyLength, Err: err}
	}
	return &k, nil
}

// StatusOf は err から結果コードを取り出します。err が nil なら StatusOK、
// キャンセルは StatusCancelled、それ以外の *StatusError でないエラーは出力失敗として扱います。
func StatusOf(err error) domain.Status {
	if err == nil {
		return domain.StatusOK
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return statusFor(err, domain.StatusWriteFailure)
}

// statusFor は err がキャンセルか期限切れなら StatusCancelled を、そうでなければ fallback を返します。
func statusFor(err error, fallback domain.Status) domain.Status {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.StatusCancelled
	}
	return fallback
}
