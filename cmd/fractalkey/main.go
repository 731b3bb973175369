package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shouni/fractal-key-kit/pkg/config"
	"github.com/shouni/fractal-key-kit/pkg/display"
	"github.com/shouni/fractal-key-kit/pkg/domain"
	"github.com/shouni/fractal-key-kit/pkg/keygen"
	"github.com/shouni/fractal-key-kit/pkg/web"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	configPath string
	keyHex     string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fractalkey",
	Short: "Render a 256-bit key as a Mandelbrot zoom for visual comparison",
	Long: `fractalkey turns a 32-byte key into a deterministic 128x128 image.
Two parties holding the same key see the same picture, so keys can be
compared by eye.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Print a fresh random key as hex",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := keygen.NewKey(cmd.Context(), keygen.NewCryptoSource(cfg.RandomRetryDelay))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), key.Hex())
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one generate-and-display cycle and write the bitmap",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the image over HTTP; clicking it generates a new one",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	generateCmd.Flags().StringVar(&keyHex, "key", "", "use this key (64 hex characters) instead of a random one")
	rootCmd.AddCommand(keyCmd, generateCmd, serveCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	var seed *domain.Key
	if keyHex != "" {
		key, err := domain.ParseKey(keyHex)
		if err != nil {
			return err
		}
		seed = &key
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	ctrl, err := a.controller(display.NewMemorySurface(), seed)
	if err != nil {
		return err
	}
	out, err := ctrl.Run(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "key:    %s\n", out.KeyHex)
	fmt.Fprintf(w, "status: %s\n", out.Text)
	if !out.Shown {
		if out.Err != nil {
			return fmt.Errorf("generation failed (code %d): %w", out.Status, out.Err)
		}
		return fmt.Errorf("generation failed (code %d)", out.Status)
	}
	fmt.Fprintf(w, "output: %s\n", cfg.OutputPath())
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	surface := display.NewMemorySurface()
	ctrl, err := a.controller(surface, nil)
	if err != nil {
		return err
	}
	handler, err := web.NewServer(ctrl, surface, a.localRenderer())
	if err != nil {
		return err
	}
	defer func() {
		ctrl.Wait()
		handler.Wait()
	}()

	if err := handler.Trigger(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP サーバーを起動します", "addr", cfg.ListenAddr, "output", cfg.OutputPath())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("HTTP サーバーを停止します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
