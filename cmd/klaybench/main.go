// Command klaybench load-tests a Klaytn node's klay_getBlockByNumber method
// and inspects single blocks.
//
// Usage examples:
//
//	klaybench run                                  # 10 workers × 100 calls against localhost:8551
//	klaybench run --workers 50 --iterations 0      # run until Ctrl+C
//	klaybench run --aggregator channel --rate 200  # paced, with tail latency
//	klaybench block 0x1a --full
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmagro/klay-bench/internal/config"
	"github.com/dmagro/klay-bench/internal/logging"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func newRootCmd() *cobra.Command {
	var (
		envFile  string
		logLevel string
	)

	root := &cobra.Command{
		Use:           "klaybench",
		Short:         "Benchmark klay_getBlockByNumber against a Klaytn node",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(envFile); err != nil {
				return err
			}
			return logging.Setup(cmd.ErrOrStderr(), logLevel)
		},
	}

	root.PersistentFlags().String("config", "", "Config file path (YAML)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before the config")
	root.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")

	root.AddCommand(runCmd())
	root.AddCommand(blockCmd())
	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "klaybench %s\n", version)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
