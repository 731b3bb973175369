// Package fractal は 256 ビットの鍵から決定的なマンデルブロ集合のズーム画像を描きます。
//
// 鍵のビットはまずパレットの生成に使われ、その後もう一度先頭から
// ズーム先の選択に使われます。各世代では画面全体の「複雑度」を累積し、
// 鍵から読んだ値が指す位置の周辺 64x64 を 2 倍に拡大します。
// ビットを使い切った時点の画面が最終画像になります。
package fractal

import (
	"image"
	"log/slog"

	"github.com/shouni/fractal-key-kit/pkg/domain"
)

const (
	focusMargin = 32
	zoomSpan    = 64
	minComplex  = 2
)

// Result は Render の結果です。Status が OK でない場合 Image は nil です。
type Result struct {
	Image       *image.RGBA
	Status      domain.Status
	Generations int
}

// Renderer は 1 回分の描画状態を保持します。並行利用はできません。
type Renderer struct {
	canvas
	bits       *bitReader
	palette    palette
	complexity [Size][Size]uint64
	generation int
}

// NewRenderer は key から Renderer を作ります。
func NewRenderer(key domain.Key) *Renderer {
	r := &Renderer{bits: newBitReader(key)}
	r.resetWindow()
	return r
}

// Render は key の画像を描画します。同じ鍵からは常に同じ画像が得られます。
func Render(key domain.Key) Result {
	return NewRenderer(key).Run()
}

// Run はビットを使い切るまでズームを繰り返します。
func (r *Renderer) Run() Result {
	r.palette = buildPalette(r.bits)
	r.bits.reset()
	r.generation = 1

	for {
		status, done := r.step()
		if !status.OK() {
			return Result{Status: status, Generations: r.generation}
		}
		if done {
			return Result{Image: r.image(), Status: domain.StatusOK, Generations: r.generation - 1}
		}
	}
}

// step は 1 世代分の描画とズームを行います。ビットが残っていなければ done を返します。
func (r *Renderer) step() (domain.Status, bool) {
	if r.bits.exhausted() {
		return domain.StatusOK, true
	}

	r.xstep = (r.mx2 - r.mx1) / Size
	r.ystep = (r.my2 - r.my1) / Size
	r.box(0, 0, Size-1, Size-1)

	total := r.measureComplexity()
	if total < minComplex {
		slog.Warn("complexity is zero", "generation", r.generation)
		return domain.StatusFlatRegion(r.generation), false
	}

	bitsRequired := 0
	for uint64(1)<<bitsRequired < total {
		bitsRequired++
	}
	raw := r.bits.read(bitsRequired)
	raw ^= uint64(1) << ((bitsRequired + r.generation/2) % bitsRequired)
	value := uint64(float64(raw) * float64(total) / float64(uint64(1)<<bitsRequired))

	slog.Debug("zoom target selected",
		"generation", r.generation,
		"value", value,
		"bits_required", bitsRequired,
		"cumulative_complexity", total)

	x, y, status := r.findFocus(value)
	if !status.OK() {
		slog.Warn("focus search failed", "generation", r.generation, "y", y, "status", status)
		return status, false
	}

	x = min(max(x, focusMargin), Size-1-focusMargin) - focusMargin
	y = min(max(y, focusMargin), Size-1-focusMargin) - focusMargin

	r.mx1 += float64(float64(x) * r.xstep)
	r.mx2 = r.mx1 + float64(r.xstep*zoomSpan)
	r.my1 += float64(float64(y) * r.ystep)
	r.my2 = r.my1 + float64(r.ystep*zoomSpan)

	if !r.bits.exhausted() {
		r.carry(x, y)
	}

	r.generation++
	return domain.StatusOK, false
}

// measureComplexity は各セルの複雑度を行優先で累積し、合計を返します。
// complexity[x][y] にはそのセルより前の累積値が入ります。
func (r *Renderer) measureComplexity() uint64 {
	var total uint64
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			r.complexity[x][y] = total
			total += r.cellComplexity(x, y)
		}
	}
	return total
}

// cellComplexity は 5x5 近傍に現れる値の種類と、それらの間隔から複雑度を求めます。
// 種類が 5 未満なら 0 です。
func (r *Renderer) cellComplexity(x, y int) uint64 {
	xl, yl := max(x-2, 0), max(y-2, 0)
	xh, yh := min(x+2, Size-1), min(y+2, Size-1)

	var seen [25]int
	count, sum := 0, 0
	for xn := xl; xn <= xh; xn++ {
		for yn := yl; yn <= yh; yn++ {
			p := int(r.pixels[xn][yn])
			diff := p
			v := 0
			for ; v < count; v++ {
				d := absInt(p - seen[v])
				if d == 0 {
					break
				}
				if d < diff {
					diff = d
				}
			}
			if v >= count {
				seen[count] = p
				count++
				sum += diff
			}
		}
	}

	if count < 5 {
		return 0
	}
	return uint64(sum * count)
}

// findFocus は累積複雑度が value を超える最初のセルの直前のセルを返します。
func (r *Renderer) findFocus(value uint64) (int, int, domain.Status) {
	x, y := Size, 0
	for y = 0; y < Size; y++ {
		if r.complexity[Size-1][y] < value {
			continue
		}
		for x = 0; x < Size; x++ {
			if r.complexity[x][y] > value {
				break
			}
		}
		if x < Size {
			break
		}
	}

	x--
	if x < 0 {
		x = Size - 1
		y--
	}
	switch {
	case y >= Size:
		return x, y, domain.StatusNoFocus(r.generation)
	case y < 0:
		return x, y, domain.StatusFocusUnderflow(r.generation)
	}
	return x, y, domain.StatusOK
}

// carry は拡大後も使える値を新しい画面の偶数セルに移し、再計算を省きます。
// 集合内（inside）のセルと、間を埋めるセルは未計算に戻します。
func (r *Renderer) carry(x, y int) {
	var kept [zoomSpan][zoomSpan]uint8
	for tx := 0; tx < zoomSpan; tx++ {
		for ty := 0; ty < zoomSpan; ty++ {
			kept[tx][ty] = r.pixels[x+tx][y+ty]
		}
	}

	for tx := 0; tx < zoomSpan; tx++ {
		for ty := 0; ty < zoomSpan; ty++ {
			px, py := tx<<1, ty<<1
			if v := kept[tx][ty]; v < inside {
				r.pixels[px][py] = v
				r.set[px][py] = true
			} else {
				r.pixels[px][py] = inside
				r.set[px][py] = false
			}
			for _, o := range [3][2]int{{1, 0}, {0, 1}, {1, 1}} {
				r.pixels[px+o[0]][py+o[1]] = inside
				r.set[px+o[0]][py+o[1]] = false
			}
		}
	}
}

// image は画面を RGBA 画像にします。y 行目は画像の 127-y 行目に描かれます。
func (r *Renderer) image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			img.SetRGBA(x, Size-1-y, r.palette.colour(r.pixels[x][y]))
		}
	}
	return img
}
