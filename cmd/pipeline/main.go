package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/httpapi"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/prompt"
	"github.com/nguyentantai21042004/minutes-flow/internal/render"
	"github.com/nguyentantai21042004/minutes-flow/internal/watcher"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "minutes",
		Short:        "Turn meeting recordings into minutes and summary documents",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: ./config.yaml when present)")

	rootCmd.AddCommand(newServeCmd(&configPath))
	rootCmd.AddCommand(newWatchCmd(&configPath))
	rootCmd.AddCommand(newRenderCmd(&configPath))

	return rootCmd
}

func loadConfig(path string) (*config.Config, logger.Logger, error) {
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.NewWithWriter(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	return cfg, log, nil
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API with SSE and websocket progress streams",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			api := httpapi.New(cfg, a.processor, a.store, a.registry, log)
			defer api.Close()

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           api,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errChan := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errChan <- err
				}
			}()

			log.Info(ctx, "========================================")
			log.Info(ctx, "Minutes API listening on %s", cfg.Server.Addr)
			log.Info(ctx, "Transcription: %s (%s), language %s", cfg.Transcription.Provider, cfg.Transcription.Model, cfg.Transcription.Language)
			log.Info(ctx, "Generation: %s (%s)", cfg.Generation.Provider, cfg.Generation.Model)
			log.Info(ctx, "Documents: %s in %s", cfg.Render.Format, cfg.Paths.Output)
			log.Info(ctx, "Max concurrent pipelines: %d", cfg.Limits.MaxConcurrent)
			log.Info(ctx, "========================================")

			select {
			case <-ctx.Done():
				log.Info(context.Background(), "Shutdown signal received")
			case err := <-errChan:
				return fmt.Errorf("http server: %w", err)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newWatchCmd(configPath *string) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process recordings dropped into the inbox folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if language == "" {
				language = cfg.Transcription.Language
			}

			ctx, stop := signalContext()
			defer stop()

			log.Info(ctx, "System: %s/%s, CPU Cores: %d", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			handler := watcher.NewInboxHandler(a.processor, cfg.Paths, language, log)
			w, err := watcher.New(cfg.Paths.Inbox, handler, log, cfg.Limits.MaxConcurrent)
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer w.Stop()

			log.Info(ctx, "Drop recordings into %s; results go to %s. Press Ctrl+C to stop", cfg.Paths.Inbox, cfg.Paths.Output)

			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info(context.Background(), "Watcher stopped")
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "", "transcription language (es|en|pt|fr|de|it)")
	return cmd
}

func newRenderCmd(configPath *string) *cobra.Command {
	var (
		output string
		title  string
		format string
	)

	cmd := &cobra.Command{
		Use:   "render <summary.md>",
		Short: "Render an edited markdown summary into a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if format == "" {
				format = cfg.Render.Format
			}
			if title == "" {
				title = prompt.DocumentTitle(cfg.Transcription.Language)
			}

			markdown, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read markdown: %w", err)
			}
			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "." + format
			}

			r, err := render.New(render.Options{Format: format, Margin: cfg.Render.Margin})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Limits.RenderTimeout)
			defer cancel()

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			err = r.Render(ctx, render.Document{Title: title, GeneratedAt: time.Now(), Markdown: string(markdown)}, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(output)
				return fmt.Errorf("render %s: %w", output, err)
			}

			log.Info(ctx, "Document written: %s", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input name with the format extension)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "document title")
	cmd.Flags().StringVarP(&format, "format", "f", "", "pdf or docx (default from config)")
	return cmd
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Uploads,
		cfg.Paths.Output,
		cfg.Paths.Inbox,
		cfg.Paths.Archived,
		filepath.Dir(cfg.Paths.Database),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
