package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fractalkey.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("ファイルも環境変数も無ければ既定値なのだ", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.Equal(t, "out.bmp", filepath.Base(cfg.OutputPath()))
	})

	t.Run("YAMLファイルの値を読むのだ", func(t *testing.T) {
		path := writeFile(t, `
output_dir: /var/cache/fractalkey
generator: identicon
use_key: false
cache_ttl: 5m
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/var/cache/fractalkey/out.bmp", cfg.OutputPath())
		assert.Equal(t, "identicon", cfg.Generator)
		assert.False(t, cfg.UseKey)
		assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	})

	t.Run("環境変数はファイルより優先されるのだ", func(t *testing.T) {
		path := writeFile(t, "listen_addr: 127.0.0.1:9000\n")
		t.Setenv("FRACTALKEY_LISTEN_ADDR", ":8080")
		t.Setenv("FRACTALKEY_REMOTE_TIMEOUT", "3s")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.ListenAddr)
		assert.Equal(t, 3*time.Second, cfg.RemoteTimeout)
	})

	t.Run("プライベートアドレスの remote は既定で許可され、設定で閉じられるのだ", func(t *testing.T) {
		assert.True(t, Default().RemoteAllowPrivate)

		cfg, err := Load(writeFile(t, "remote_allow_private: false\n"))
		require.NoError(t, err)
		assert.False(t, cfg.RemoteAllowPrivate)

		t.Setenv("FRACTALKEY_REMOTE_ALLOW_PRIVATE", "false")
		cfg, err = Load("")
		require.NoError(t, err)
		assert.False(t, cfg.RemoteAllowPrivate)
	})

	t.Run("ファイルが無ければエラーなのだ", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("壊れたYAMLはエラーなのだ", func(t *testing.T) {
		_, err := Load(writeFile(t, "output_dir: [unterminated\n"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"出力ディレクトリが空", func(c *Config) { c.OutputDir = "" }},
		{"出力名にディレクトリを含む", func(c *Config) { c.OutputName = "../out.bmp" }},
		{"未知のジェネレーター", func(c *Config) { c.Generator = "julia" }},
		{"remote なのにURLが無い", func(c *Config) { c.Generator = "remote" }},
		{"キャッシュ期限が負", func(c *Config) { c.CacheTTL = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("remote にURLがあれば通るのだ", func(t *testing.T) {
		cfg := Default()
		cfg.Generator = "remote"
		cfg.RemoteURL = "http://peer:8000/api/render"
		assert.NoError(t, cfg.Validate())
	})
}
