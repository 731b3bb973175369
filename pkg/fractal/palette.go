package fractal

import "image/color"

const (
	paletteSize   = 256
	paletteStride = 9
)

// palette の各要素は B, G, R の順です。
type palette [paletteSize][3]uint8

// buildPalette は鍵のビットから 256 色のグラデーションを作ります。
// 開始色に 8 ビット、9 色ごとの区切り色に 8 ビットずつ消費します。
// 演算は 8 ビットで折り返します。
func buildPalette(r *bitReader) palette {
	var p palette
	var c0, c1 [3]uint8

	c0[0] = uint8(r.read(3) << 4)
	c0[1] = uint8((0x80 + r.read(3)) << 4)
	c0[2] = uint8((0x80 + r.read(2)) << 5)

	for i := 0; i < paletteSize; i += paletteStride {
		// 区切り色は開始色からずらして、隣り合う色が近づきすぎないようにします。
		c1[0] = uint8((uint64(c0[0]) + 0x40 + r.read(3)) << 4)
		c1[1] = uint8((uint64(c0[1]) + 0x40 + r.read(3)) << 4)
		c1[2] = uint8((uint64(c0[2]) + 0x40 + r.read(2)) << 5)

		var d [3]int
		for e := range 3 {
			d[e] = absInt(int(c1[e])-int(c0[e])) / paletteStride
			if c1[e] < c0[e] {
				d[e] = -d[e]
			}
		}

		for j := 0; j < paletteStride && i+j < paletteSize; j++ {
			for e := range 3 {
				p[i+j][e] = uint8(int(c0[e]) + d[e]*j)
			}
		}
		c0 = c1
	}

	p[paletteSize-1] = [3]uint8{}
	return p
}

// colour はピクセル値を色に変換します。集合内（inside）は黒です。
func (p *palette) colour(v uint8) color.RGBA {
	if v >= inside {
		return color.RGBA{A: 0xff}
	}
	c := p[v]
	return color.RGBA{R: c[2], G: c[1], B: c[0], A: 0xff}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
