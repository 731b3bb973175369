package display

import (
	"image"
	"sync"
)

// Surface は画像と状態テキストを表示する面です。
type Surface interface {
	ShowStatus(text string)
	ShowImage(img image.Image)
}

// MemorySurface は最新の表示内容を保持するだけの Surface です。複数の goroutine から使えます。
type MemorySurface struct {
	mu      sync.RWMutex
	status  string
	img     image.Image
	version uint64
}

var _ Surface = (*MemorySurface)(nil)

// NewMemorySurface は空の MemorySurface を作成します。
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{}
}

func (s *MemorySurface) ShowStatus(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = text
}

func (s *MemorySurface) ShowImage(img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = img
	s.version++
}

// Status は現在の状態テキストを返します。
func (s *MemorySurface) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Image は現在表示中の画像と、画像が差し替えられた回数を返します。
func (s *MemorySurface) Image() (image.Image, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img, s.version
}
