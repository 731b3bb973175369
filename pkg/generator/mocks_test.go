package generator

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/shouni/fractal-key-kit/pkg/domain"
	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// --- Mocks ---

// mockRenderer は ImageRenderer のテスト用モックなのだ。
type mockRenderer struct {
	calls      int
	lastKey    domain.Key
	renderFunc func(key domain.Key) (*ImageOutput, error)
}

func (m *mockRenderer) Render(ctx context.Context, key domain.Key) (*ImageOutput, error) {
	m.calls++
	m.lastKey = key
	if m.renderFunc != nil {
		return m.renderFunc(key)
	}
	return &ImageOutput{Data: []byte("BMfake"), MimeType: "image/bmp"}, nil
}

// mockRandom は決まったバイトを返す乱数源なのだ。
type mockRandom struct {
	fill byte
	err  error
}

func (m *mockRandom) RandomBytes(ctx context.Context, n int) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return bytes.Repeat([]byte{m.fill}, n), nil
}

// mockStore はメモリ上の storage.Store なのだ。
type mockStore struct {
	mu       sync.Mutex
	files    map[string][]byte
	writeErr error
}

func newMockStore() *mockStore {
	return &mockStore{files: make(map[string][]byte)}
}

func (m *mockStore) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[uri]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockStore) List(ctx context.Context, uri string, fn func(string) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name := range m.files {
		if err := fn(name); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockStore) Write(ctx context.Context, uri string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.files[uri] = append([]byte(nil), data...)
	return nil
}

func (m *mockStore) Delete(ctx context.Context, uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, uri)
	return nil
}

func (m *mockStore) has(uri string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[uri]
	return ok
}

// mockHTTPClient は httpkit.ClientInterface を実装するのだ。
// 使わないメソッドは埋め込みで解決するのだ。
type mockHTTPClient struct {
	httpkit.ClientInterface
	lastURL  string
	lastBody any
	data     []byte
	err      error
}

func (m *mockHTTPClient) PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error) {
	m.lastURL = url
	m.lastBody = data
	return m.data, m.err
}

// mockCache は ImageCacher インターフェースを実装するのだ。
type mockCache struct {
	data map[string]any
}

func (m *mockCache) Get(key string) (any, bool) {
	val, ok := m.data[key]
	return val, ok
}

func (m *mockCache) Set(key string, value any, d time.Duration) {
	m.data[key] = value
}

var errBoom = errors.New("boom")
