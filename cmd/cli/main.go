package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fastfisher/internal/config"
	"fastfisher/internal/container"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "fastfisher",
		Short:         "Fisher exact test on 2×2 contingency tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (ERROR, WARN, INFO, DEBUG, TRACE)")

	setup := func() (*container.Container, error) {
		// .env is optional
		_ = godotenv.Load()

		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		return container.New(cfg)
	}

	rootCmd.AddCommand(
		newTestCmd(setup),
		newExactCmd(setup),
		newBatchCmd(setup),
		newSensesCmd(setup),
		newCompareCmd(setup),
		newExceptionsCmd(setup),
		newBenchCmd(setup),
		newRunsCmd(setup),
		newOraclesCmd(),
	)
	return rootCmd
}

// setupFunc builds the application container from the environment.
type setupFunc func() (*container.Container, error)
