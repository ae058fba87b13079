package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmagro/klay-bench/internal/config"
	"github.com/dmagro/klay-bench/internal/output"
	"github.com/dmagro/klay-bench/internal/rpc"
)

// defaultBlockTimeout bounds a single interactive block fetch.
var defaultBlockTimeout = 10 * time.Second

func blockCmd() *cobra.Command {
	var (
		endpoint string
		timeout  time.Duration
		full     bool
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "block [selector]",
		Short: "Fetch and display a single block",
		Long: `Fetch one block with klay_getBlockByNumber.

The selector is latest (default), earliest, pending, a 0x hex number or a
decimal number.

Examples:
  klaybench block
  klaybench block 0x1a
  klaybench block 26 --full --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
			cfg, err := config.Read(cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("endpoint") {
				cfg.Endpoint = endpoint
			}
			// a timeout from the config file wins over the flag default
			if cmd.Flags().Changed("timeout") || cfg.Timeout == 0 {
				cfg.Timeout = timeout
			}

			arg := ""
			if len(args) > 0 {
				arg = args[0]
			}
			sel, err := rpc.ParseBlockArg(arg)
			if err != nil {
				return err
			}
			cfg.Selector = sel.String()
			if err := cfg.Validate(); err != nil {
				return err
			}

			var opts []rpc.HTTPOption
			if cfg.Timeout > 0 {
				opts = append(opts, rpc.WithTimeout(cfg.Timeout))
			}
			client, err := rpc.Dial(cfg.Endpoint, opts...)
			if err != nil {
				return err
			}

			if full {
				return showBlock(cmd, cfg.Endpoint, sel, jsonOut, func() (*rpc.Block[json.RawMessage], error) {
					return client.Klay().GetBlockByNumberFull(cmd.Context(), sel)
				})
			}
			return showBlock(cmd, cfg.Endpoint, sel, jsonOut, func() (*rpc.HashBlock, error) {
				return client.Klay().GetBlockByNumber(cmd.Context(), sel)
			})
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", config.DefaultEndpoint, "Node JSON-RPC URL")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultBlockTimeout, "Request timeout")
	cmd.Flags().BoolVar(&full, "full", false, "Include full transaction objects")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the block as JSON")
	return cmd
}

func showBlock[TX any](cmd *cobra.Command, endpoint string, sel rpc.BlockNumber, jsonOut bool, fetch func() (*rpc.Block[TX], error)) error {
	out := cmd.OutOrStdout()

	start := time.Now()
	block, err := fetch()
	latency := time.Since(start)
	if err != nil {
		return err
	}

	if jsonOut {
		return output.WriteJSON(out, block)
	}
	if block == nil {
		output.RenderNoBlock(out, sel, endpoint)
		return nil
	}
	output.RenderBlock(out, output.BlockView[TX]{
		Block:    block,
		Endpoint: endpoint,
		Latency:  latency,
	})
	return nil
}
