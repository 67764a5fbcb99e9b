// Package cmd builds the jpipd command tree: a cobra root with a
// persistent --log-level flag, shaped the same way the example CLI
// this project drew its CLI conventions from shapes its own root
// command.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cocosip/jpeg2000-jpip/internal/logging"
)

// NewRoot builds the jpipd root command.
func NewRoot(ctx context.Context, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "jpipd",
		Short: "a JPEG 2000 / JPIP interactive image delivery server",
		Long:  "jpipd serves JPEG 2000 codestreams over JPIP, with adaptive quality, predictive push, and bandwidth-aware delivery scheduling.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logLevelFlag, _ := cmd.Flags().GetString("log-level")

			var level slog.Level
			if err := level.UnmarshalText([]byte(strings.ToUpper(logLevelFlag))); err != nil {
				level = slog.LevelInfo
			}
			slog.SetDefault(logging.Logger(os.Stdout, false, level))
			if err := level.UnmarshalText([]byte(strings.ToUpper(logLevelFlag))); err != nil {
				slog.WarnContext(ctx, "invalid log level, defaulting to INFO", "level", logLevelFlag, "error", err)
			}
		},
	}
	root.PersistentFlags().String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")

	root.AddCommand(
		NewServeCmd(ctx),
		NewVersionCmd(version),
	)
	return root
}
