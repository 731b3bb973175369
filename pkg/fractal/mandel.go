package fractal

const (
	// Size は出力画像の一辺のピクセル数です。
	Size          = 128
	maxIterations = 255
	inside        = 255
)

// 箱の辺ごとに「角の値と違うセルがあった」ことを記録するフラグ。
const (
	edgeTopLeft = 1 << iota
	edgeTopRight
	edgeMidLeft
	edgeMidRight
	edgeBottomLeft
	edgeBottomRight
	edgeLeftUpper
	edgeLeftLower
	edgeCentreUpper
	edgeCentreLower
	edgeRightUpper
	edgeRightLower
)

const (
	quadUpperLeft  = edgeTopLeft | edgeCentreUpper | edgeMidLeft | edgeLeftUpper
	quadLowerLeft  = edgeMidLeft | edgeCentreLower | edgeBottomLeft | edgeLeftLower
	quadUpperRight = edgeTopRight | edgeRightUpper | edgeMidRight | edgeCentreUpper
	quadLowerRight = edgeMidRight | edgeRightLower | edgeBottomRight | edgeCentreLower
)

// canvas は現在の表示窓とピクセル値を保持します。
type canvas struct {
	pixels [Size][Size]uint8
	set    [Size][Size]bool

	mx1, mx2, my1, my2 float64
	xstep, ystep       float64
}

func (c *canvas) resetWindow() {
	c.mx1, c.mx2 = -2.5, 1
	c.my1, c.my2 = -2, 2
	c.set = [Size][Size]bool{}
}

func inBounds(x, y int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size
}

func (c *canvas) value(x, y int) uint8 {
	if !inBounds(x, y) {
		return 0
	}
	return c.pixels[x][y]
}

// point は未計算のセルについてマンデルブロ反復を行い、脱出までの回数を書き込みます。
func (c *canvas) point(x, y int) {
	if !inBounds(x, y) || c.set[x][y] {
		return
	}
	// 積を明示的に丸めて FMA への融合を防ぎ、どのアーキテクチャでも同じ画像にする
	cIm := c.my1 + float64(c.ystep*float64(y))
	cRe := c.mx1 + float64(c.xstep*float64(x))

	zRe, zIm := cRe, cIm
	n := 0
	for ; n < maxIterations; n++ {
		zRe2, zIm2 := float64(zRe*zRe), float64(zIm*zIm)
		if zRe2+zIm2 > 4 {
			break
		}
		zIm = float64(2*zRe*zIm) + cIm
		zRe = zRe2 - zIm2 + cRe
	}

	v := inside
	if n < maxIterations {
		v = n
	}
	c.pixels[x][y] = uint8(v)
	c.set[x][y] = true
}

func (c *canvas) fill(xl, yl, xh, yh int, v uint8) {
	for x := xl; x <= xh; x++ {
		for y := yl; y <= yh; y++ {
			if inBounds(x, y) {
				c.pixels[x][y] = v
				c.set[x][y] = true
			}
		}
	}
}

func (c *canvas) scanRow(y, x0, x1, xl, yl int, flag int) int {
	f := 0
	for x := x0; x <= x1; x++ {
		c.point(x, y)
		if c.value(x, y) != c.value(xl, yl) {
			f = flag
		}
	}
	return f
}

func (c *canvas) scanCol(x, y0, y1, xl, yl int, flag int) int {
	f := 0
	for y := y0; y <= y1; y++ {
		c.point(x, y)
		if c.value(x, y) != c.value(xl, yl) {
			f = flag
		}
	}
	return f
}

// box は箱の外周と中線を計算し、四分割した各領域について
// 境界がすべて角の値と同じなら内部を塗りつぶし、違えば再帰します。
func (c *canvas) box(xl, yl, xh, yh int) {
	xm := (xl + xh) / 2
	ym := (yl + yh) / 2

	edges := 0
	edges |= c.scanRow(yl, xl, xm, xl, yl, edgeTopLeft)
	edges |= c.scanRow(yl, xm+1, xh, xl, yl, edgeTopRight)
	edges |= c.scanRow(ym, xl, xm, xl, yl, edgeMidLeft)
	edges |= c.scanRow(ym, xm+1, xh, xl, yl, edgeMidRight)
	edges |= c.scanRow(yh, xl, xm, xl, yl, edgeBottomLeft)
	edges |= c.scanRow(yh, xm+1, xh, xl, yl, edgeBottomRight)
	edges |= c.scanCol(xl, yl, ym, xl, yl, edgeLeftUpper)
	edges |= c.scanCol(xl, ym+1, yh, xl, yl, edgeLeftLower)
	edges |= c.scanCol(xm, yl, ym, xl, yl, edgeCentreUpper)
	edges |= c.scanCol(xm, ym+1, yh, xl, yl, edgeCentreLower)
	edges |= c.scanCol(xh, yl, ym, xl, yl, edgeRightUpper)
	edges |= c.scanCol(xh, ym+1, yh, xl, yl, edgeRightLower)

	if edges&quadUpperLeft != 0 {
		c.box(xl+1, yl+1, xm-1, ym-1)
	} else {
		c.fill(xl+1, yl+1, xm-1, ym-1, c.value(xl, yl))
	}
	if edges&quadLowerLeft != 0 {
		c.box(xl+1, ym+1, xm-1, yh-1)
	} else {
		c.fill(xl+1, ym+1, xm-1, yh-1, c.value(xl, ym))
	}
	if edges&quadUpperRight != 0 {
		c.box(xm+1, yl+1, xh-1, ym-1)
	} else {
		c.fill(xm+1, yl+1, xh-1, ym-1, c.value(xm, yl))
	}
	if edges&quadLowerRight != 0 {
		c.box(xm+1, ym+1, xh-1, yh-1)
	} else {
		c.fill(xm+1, ym+1, xh-1, yh-1, c.value(xm, ym))
	}
}
