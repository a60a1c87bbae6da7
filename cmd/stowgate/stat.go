package main

import (
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sagarc03/stowgate"
	"github.com/sagarc03/stowgate/config"
)

var statCmd = &cobra.Command{
	Use:   "stat <location-prefix> <key>",
	Short: "Show metadata of one object",
	Long: `Connect the pool behind a location and stat one object in it, exactly as
the gateway would before answering a request.`,
	Example: `  stowgate stat /media/ videos/intro.mp4`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.FromContext(ctx)
		if err != nil {
			return err
		}

		loc, ok := cfg.FindLocation(args[0])
		if !ok {
			return fmt.Errorf("no enabled location with prefix %s", args[0])
		}

		registry, err := stowgate.NewRegistry(ctx, drivers, []stowgate.PoolConfig{
			{Name: loc.Pool, Driver: loc.Driver, ConfPath: loc.Conf},
		})
		if err != nil {
			return err
		}
		defer registry.Close()

		conn, err := registry.Lookup(loc.Pool)
		if err != nil {
			return err
		}

		info, err := conn.IO.Stat(ctx, args[1])
		if err != nil {
			return fmt.Errorf("stat %s: %w", args[1], err)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(tw, "pool\t%s\n", conn.Name)
		_, _ = fmt.Fprintf(tw, "key\t%s\n", args[1])
		_, _ = fmt.Fprintf(tw, "size\t%d (%s)\n", info.Size, humanize.IBytes(info.Size))
		_, _ = fmt.Fprintf(tw, "last-modified\t%s (%s)\n", info.ModTime.UTC().Format(http.TimeFormat), humanize.Time(info.ModTime))
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statCmd)
}
