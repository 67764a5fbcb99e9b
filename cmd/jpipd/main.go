package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cocosip/jpeg2000-jpip/cmd/jpipd/cmd"
	"github.com/cocosip/jpeg2000-jpip/internal/logging"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	go func() {
		defer cancel()
		<-ctx.Done()
	}()

	slog.SetDefault(logging.Logger(os.Stdout, false, slog.LevelInfo))
	ctx = logging.AppendCtx(ctx, slog.Group("jpipd", slog.String("version", version)))

	if err := cmd.NewRoot(ctx, version).ExecuteContext(ctx); err != nil {
		slog.ErrorContext(ctx, "jpipd exited with error", "error", err)
		os.Exit(1)
	}
}
