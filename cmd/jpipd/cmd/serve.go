package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/cocosip/jpeg2000-jpip/jpip/server"
)

// NewServeCmd builds the "serve" subcommand, which assembles a
// server.Dispatcher from its flags and runs the JPIP HTTP and
// WebSocket endpoints until the context is cancelled.
func NewServeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the jpipd server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromFlags(cmd)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			dispatcher := server.Build(cfg, reg)
			handler := &server.Handler{Dispatcher: dispatcher}

			mux := http.NewServeMux()
			mux.Handle("/jpip", handler)
			mux.HandleFunc("/jpip/ws", handler.ServeWebSocket(ctx))
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

			httpServer := &http.Server{Addr: cfg.Addr, Handler: mux}
			errCh := make(chan error, 1)
			go func() {
				slog.InfoContext(ctx, "jpipd listening", "addr", cfg.Addr, "images", len(cfg.Images))
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("addr", ":8080", "HTTP listen address")
	pf.StringSlice("image", nil, "registered image as name=url=format, repeatable")
	pf.Float64("global-bps", 0, "global bandwidth limit in bytes/sec, 0 = unlimited")
	pf.Float64("client-bps", 0, "per-client bandwidth limit in bytes/sec, 0 = unlimited")
	pf.Int("burst", 1<<20, "bandwidth throttle burst size in bytes")
	pf.Int("queue-capacity", 256, "bounded request queue capacity")
	return cmd
}

func configFromFlags(cmd *cobra.Command) (server.Config, error) {
	addr, _ := cmd.Flags().GetString("addr")
	imageFlags, _ := cmd.Flags().GetStringSlice("image")
	globalBps, _ := cmd.Flags().GetFloat64("global-bps")
	clientBps, _ := cmd.Flags().GetFloat64("client-bps")
	burst, _ := cmd.Flags().GetInt("burst")
	queueCapacity, _ := cmd.Flags().GetInt("queue-capacity")

	images, err := parseImageFlags(imageFlags)
	if err != nil {
		return server.Config{}, err
	}

	cfg := server.Config{
		Addr:          addr,
		Images:        images,
		BurstBytes:    burst,
		QueueCapacity: queueCapacity,
	}
	if globalBps > 0 {
		cfg.GlobalBandwidthBps = &globalBps
	}
	if clientBps > 0 {
		cfg.ClientBandwidthBps = &clientBps
	}
	return cfg, nil
}

// parseImageFlags turns "name=url=format" flag values into Images.
func parseImageFlags(flags []string) ([]server.Image, error) {
	images := make([]server.Image, 0, len(flags))
	for _, flag := range flags {
		parts := strings.SplitN(flag, "=", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid --image %q, want name=url=format", flag)
		}
		images = append(images, server.Image{Name: parts[0], URL: parts[1], Format: parts[2]})
	}
	return images, nil
}
