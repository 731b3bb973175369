package domain

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// KeySize は鍵のバイト長です（256 ビット）。
const KeySize = 32

// ErrInvalidKey は鍵の形式が不正な場合に返されます。
var ErrInvalidKey = errors.New("invalid key")

// Key は画像生成のシードとなる 32 バイトの鍵です。
// 鍵交換の結果を目視で照合するために使うことを想定しています。
type Key [KeySize]byte

// KeyFromBytes はバイト列から Key を作成します。長さが KeySize でなければエラーです。
func KeyFromBytes(b []byte) (Key, error) {
	var k Key
	if len(b) != KeySize {
		return k, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, KeySize, len(b))
	}
	copy(k[:], b)
	return k, nil
}

// ParseKey は 64 文字の16進文字列を Key に変換します。大文字小文字は問いません。
func ParseKey(s string) (Key, error) {
	var k Key
	if len(s) != KeySize*2 {
		return k, fmt.Errorf("%w: want %d hex characters, got %d", ErrInvalidKey, KeySize*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return k, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	copy(k[:], b)
	return k, nil
}

// Hex は鍵を小文字の16進文字列（常に 64 文字）で返します。
func (k Key) Hex() string {
	return hex.EncodeToString(k[:])
}

func (k Key) String() string {
	return k.Hex()
}
