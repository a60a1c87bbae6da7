package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagarc03/stowgate/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and connect every pool",
	Long: `Load the configuration, open a connection to every pool referenced by an
enabled location, then disconnect. Exits non-zero on the first failure.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.FromContext(ctx)
		if err != nil {
			return err
		}

		if _, err := cfg.GatewayLocations(); err != nil {
			return fmt.Errorf("invalid locations: %w", err)
		}

		registry, err := openRegistry(ctx, cfg)
		if err != nil {
			return err
		}
		defer registry.Close()

		for _, name := range registry.Pools() {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ok\t%s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
