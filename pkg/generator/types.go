package generator

import (
	"fmt"

	"github.com/shouni/fractal-key-kit/pkg/domain"
)

const (
	KindFractal   = "fractal"
	KindIdenticon = "identicon"
	KindRemote    = "remote"

	cacheKeyImage = "image:"
)

// ImageOutput は Renderer の出力です。
type ImageOutput struct {
	Data     []byte
	MimeType string
}

// StatusError は生成が StatusOK 以外で終わったことを表します。
type StatusError struct {
	Status domain.Status
	Key    domain.Key
	Err    error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (code=%d, %s): %v", e.Status, e.Status, e.Err)
	}
	return fmt.Sprintf("generation failed (code=%d, %s)", e.Status, e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// IsKnownKind は kind が対応しているバックエンド名かどうかを返します。
func IsKnownKind(kind string) bool {
	switch kind {
	case KindFractal, KindIdenticon, KindRemote:
		return true
	}
	return false
}
