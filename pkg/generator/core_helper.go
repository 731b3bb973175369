package generator

import (
	"context"
	"fmt"

	"github.com/aofei/cameron"
	"github.com/shouni/fractal-key-kit/pkg/domain"
	"github.com/shouni/fractal-key-kit/pkg/fractal"
	"github.com/shouni/fractal-key-kit/pkg/imgutil"
)

const (
	identiconSize  = fractal.Size
	identiconBlock = 16
)

// FractalRenderer は鍵からマンデルブロのズーム画像を BMP で描きます。
type FractalRenderer struct{}

// Render は描画に失敗した場合、描画側の結果コードを持つ *StatusError を返します。
func (FractalRenderer) Render(ctx context.Context, key domain.Key) (*ImageOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := fractal.Render(key)
	if !res.Status.OK() {
		return nil, &StatusError{Status: res.Status, Key: key}
	}
	data, err := imgutil.EncodeBitmap(res.Image)
	if err != nil {
		return nil, &StatusError{Status: domain.StatusWriteFailure, Key: key, Err: err}
	}
	return &ImageOutput{Data: data, MimeType: imgutil.MimeTypeBMP}, nil
}

// IdenticonRenderer は鍵からアイデンティコンを BMP で描きます。
type IdenticonRenderer struct{}

func (IdenticonRenderer) Render(ctx context.Context, key domain.Key) (*ImageOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img := cameron.Identicon(key[:], identiconSize, identiconBlock)
	data, err := imgutil.EncodeBitmap(img)
	if err != nil {
		return nil, &StatusError{Status: domain.StatusWriteFailure, Key: key, Err: fmt.Errorf("identicon: %w", err)}
	}
	return &ImageOutput{Data: data, MimeType: imgutil.MimeTypeBMP}, nil
}
