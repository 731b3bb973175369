package fractal

import "github.com/shouni/fractal-key-kit/pkg/domain"

const keyBits = domain.KeySize * 8

// bitReader は鍵のビットを最上位のインデックスから順に取り出します。
// 使い切った後に読んだビットは 0 になります。
type bitReader struct {
	bits domain.Key
	left int
}

func newBitReader(key domain.Key) *bitReader {
	return &bitReader{bits: key, left: keyBits}
}

func (r *bitReader) reset() {
	r.left = keyBits
}

func (r *bitReader) exhausted() bool {
	return r.left < 1
}

func (r *bitReader) read(count int) uint64 {
	var b uint64
	for ; count > 0; count-- {
		b <<= 1
		r.left--
		if r.left >= 0 && r.bits[r.left>>3]&(1<<uint(r.left&7)) != 0 {
			b |= 1
		}
	}
	return b
}
