// Package web はコントローラーの表示面をブラウザ向けに公開する HTTP サーバーです。
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"

	"github.com/shouni/fractal-key-kit/pkg/display"
	"github.com/shouni/fractal-key-kit/pkg/domain"
	"github.com/shouni/fractal-key-kit/pkg/generator"
	"github.com/shouni/fractal-key-kit/pkg/imgutil"
)

const (
	maxRenderBody = 1 << 10
	jpegQuality   = 85
)

// Cycler はサイクルの開始と実行中かどうかの確認ができるものです。display.Controller が実装しています。
type Cycler interface {
	Trigger(ctx context.Context) (<-chan display.Outcome, error)
	Busy() bool
}

// StatusResponse は GET /api/status の応答です。Status は最初のサイクルが終わるまで null です。
type StatusResponse struct {
	Key        string `json:"key"`
	Status     *int   `json:"status"`
	Text       string `json:"text"`
	Generating bool   `json:"generating"`
}

type renderError struct {
	Status int    `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Server は表示面の HTTP ハンドラーです。
type Server struct {
	cycler   Cycler
	surface  *display.MemorySurface
	renderer generator.ImageRenderer
	mux      *http.ServeMux

	mu   sync.Mutex
	last *display.Outcome
	wg   sync.WaitGroup
}

var _ http.Handler = (*Server)(nil)

// NewServer は Server を作成します。renderer が nil なら POST /api/render は登録しません。
func NewServer(cycler Cycler, surface *display.MemorySurface, renderer generator.ImageRenderer) (*Server, error) {
	if cycler == nil {
		return nil, fmt.Errorf("cycler is required")
	}
	if surface == nil {
		return nil, fmt.Errorf("surface is required")
	}

	s := &Server{
		cycler:   cycler,
		surface:  surface,
		renderer: renderer,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /image.png", s.handleImage)
	s.mux.HandleFunc("GET /image.jpg", s.handleImage)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/generate", s.handleGenerate)
	if renderer != nil {
		s.mux.HandleFunc("POST /api/render", s.handleRender)
	}
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Trigger はサイクルを開始し、その結果を /api/status 用に記録します。
// サイクルが動いている場合は display.ErrBusy を返します。
func (s *Server) Trigger(ctx context.Context) error {
	done, err := s.cycler.Trigger(ctx)
	if err != nil {
		return err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for out := range done {
			s.mu.Lock()
			s.last = &out
			s.mu.Unlock()
		}
	}()
	return nil
}

// Wait は記録待ちの結果がすべて届くまで待ちます。
func (s *Server) Wait() {
	s.wg.Wait()
}

// Last は最後に終わったサイクルの結果を返します。
func (s *Server) Last() (display.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return display.Outcome{}, false
	}
	return *s.last, true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, s.surface.Status()); err != nil {
		slog.ErrorContext(r.Context(), "ページの描画に失敗しました", "error", err)
	}
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	img, _ := s.surface.Image()
	if img == nil {
		http.NotFound(w, r)
		return
	}
	mimeType := imgutil.MimeTypePNG
	data, err := imgutil.EncodePNG(img)
	if err == nil && r.URL.Path == "/image.jpg" {
		mimeType = imgutil.MimeTypeJPEG
		data, err = imgutil.CompressToJPEG(data, jpegQuality)
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "画像の変換に失敗しました", "path", r.URL.Path, "error", err)
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Text:       s.surface.Status(),
		Generating: s.cycler.Busy(),
	}
	if out, ok := s.Last(); ok {
		code := int(out.Status)
		resp.Key = out.KeyHex
		resp.Status = &code
	}
	writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	// リクエストが終わってもサイクルは続ける
	err := s.Trigger(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, display.ErrBusy):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusAccepted)
	}
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req generator.RenderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRenderBody)).Decode(&req); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, renderError{Status: int(domain.StatusBadKeyLength), Error: err.Error()})
		return
	}
	key, err := domain.ParseKey(req.Key)
	if err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, renderError{Status: int(domain.StatusBadKeyLength), Error: err.Error()})
		return
	}

	out, err := s.renderer.Render(r.Context(), key)
	if err != nil {
		status := generator.StatusOf(err)
		slog.WarnContext(r.Context(), "描画要求に失敗しました", "key", key.Hex(), "code", int(status), "error", err)
		writeJSON(r.Context(), w, http.StatusUnprocessableEntity, renderError{Status: int(status)})
		return
	}
	w.Header().Set("Content-Type", out.MimeType)
	_, _ = w.Write(out.Data)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "JSON の書き込みに失敗しました", "error", err)
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>fractalkey</title></head>
<body>
<img id="image" src="/image.png" width="384" height="384" alt="" style="image-rendering: pixelated; cursor: pointer">
<p id="status">{{.}}</p>
<script>
document.getElementById("image").addEventListener("click", async () => {
  const res = await fetch("/api/generate", {method: "POST"});
  if (res.status === 409) return;
  for (;;) {
    await new Promise(r => setTimeout(r, 200));
    const st = await (await fetch("/api/status")).json();
    if (!st.generating) break;
  }
  location.reload();
});
</script>
</body>
</html>
`))
