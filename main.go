package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"

	"github.com/hanatsumi/rakuyomi/cmd"
)

var Version = "develop"

func main() {
	var dataDirectory string

	defaultDataDirectory := os.Getenv("RAKUYOMI_DATA_DIR")
	if defaultDataDirectory != "" && !filepath.IsAbs(defaultDataDirectory) {
		if abs, err := filepath.Abs(defaultDataDirectory); err == nil {
			defaultDataDirectory = abs
		}
	}

	rootCmd := &cobra.Command{
		Use:   "rakuyomi",
		Short: "rakuyomi - a manga aggregator backend",
		Long:  `rakuyomi loads Aidoku-compatible sources and serves search, chapter listing, and chapter downloads against them.`,
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&dataDirectory, "data-directory", defaultDataDirectory, "Path to the data directory (defaults to the XDG data directory)")

	rootCmd.AddCommand(cmd.NewVersionCmd(Version))
	rootCmd.AddCommand(cmd.NewSourceCmd(&dataDirectory))
	rootCmd.AddCommand(cmd.NewSearchCmd(&dataDirectory))
	rootCmd.AddCommand(cmd.NewChaptersCmd(&dataDirectory))
	rootCmd.AddCommand(cmd.NewDownloadCmd(&dataDirectory))
	rootCmd.AddCommand(cmd.NewBatchCmd(&dataDirectory))
	rootCmd.AddCommand(cmd.NewServeMetricsCmd())
	rootCmd.AddCommand(cmd.NewServeCmd(&dataDirectory))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
