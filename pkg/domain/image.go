package domain

// ImageResponse は生成された画像データとそのメタデータです。
type ImageResponse struct {
	Data     []byte
	MimeType string
	UsedKey  Key    // 生成に使った鍵（シード未指定時は生成側で引いたもの）
	Path     string // 出力先のパス
	Status   Status
}
