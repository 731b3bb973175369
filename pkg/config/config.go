// Package config はアプリケーション設定を YAML ファイルと環境変数から読み込みます。
// 環境変数の値はファイルの値より優先されます。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shouni/fractal-key-kit/pkg/generator"
	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定です。
type Config struct {
	OutputDir     string        `yaml:"output_dir"         env:"FRACTALKEY_OUTPUT_DIR"`
	OutputName    string        `yaml:"output_name"        env:"FRACTALKEY_OUTPUT_NAME"`
	Generator     string        `yaml:"generator"          env:"FRACTALKEY_GENERATOR"`
	UseKey        bool          `yaml:"use_key"            env:"FRACTALKEY_USE_KEY"`
	RemoteURL     string        `yaml:"remote_url"         env:"FRACTALKEY_REMOTE_URL"`
	RemoteTimeout time.Duration `yaml:"remote_timeout"     env:"FRACTALKEY_REMOTE_TIMEOUT"`
	// RemoteAllowPrivate はループバックやプライベートアドレスの remote_url を許可します。
	// URL は運用者が指定するものなので既定で許可します。
	RemoteAllowPrivate bool          `yaml:"remote_allow_private" env:"FRACTALKEY_REMOTE_ALLOW_PRIVATE"`
	CacheTTL           time.Duration `yaml:"cache_ttl"          env:"FRACTALKEY_CACHE_TTL"`
	ListenAddr         string        `yaml:"listen_addr"        env:"FRACTALKEY_LISTEN_ADDR"`
	LogLevel           string        `yaml:"log_level"          env:"FRACTALKEY_LOG_LEVEL"`
	RandomRetryDelay   time.Duration `yaml:"random_retry_delay" env:"FRACTALKEY_RANDOM_RETRY_DELAY"`
}

// Default は既定値の Config を返します。
func Default() Config {
	return Config{
		OutputDir:          filepath.Join(os.TempDir(), "fractalkey"),
		OutputName:         "out.bmp",
		Generator:          generator.KindFractal,
		UseKey:             true,
		RemoteTimeout:      30 * time.Second,
		RemoteAllowPrivate: true,
		ListenAddr:         "localhost:8000",
		LogLevel:           "info",
		RandomRetryDelay:   time.Second,
	}
}

// Load は既定値に path の YAML（空なら読まない）を重ね、さらに環境変数を重ねて返します。
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は設定の整合性を確認します。
func (c Config) Validate() error {
	var errs []error
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir is required"))
	}
	if c.OutputName == "" || filepath.Base(c.OutputName) != c.OutputName {
		errs = append(errs, fmt.Errorf("output_name must be a plain file name: %q", c.OutputName))
	}
	if !generator.IsKnownKind(c.Generator) {
		errs = append(errs, fmt.Errorf("unknown generator: %q", c.Generator))
	}
	if c.Generator == generator.KindRemote && c.RemoteURL == "" {
		errs = append(errs, errors.New("remote_url is required for the remote generator"))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, errors.New("cache_ttl must not be negative"))
	}
	return errors.Join(errs...)
}

// OutputPath は出力画像のパスです。
func (c Config) OutputPath() string {
	return filepath.Join(c.OutputDir, c.OutputName)
}
