package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sagarc03/stowgate/config"
	"github.com/sagarc03/stowgate/database"
)

var initCmd = &cobra.Command{
	Use:   "init <location-prefix> [directory]",
	Short: "Create a database pool and load files into it",
	Long: `Create the blob table behind a database-backed location and, when a
directory is given, store every regular file under it as an object. Keys are
the slash-separated paths relative to the directory; modification times are
preserved. This is useful when:
  - Setting up a database pool for the first time
  - Migrating a directory served by the filesystem driver into a database`,
	Example: `  stowgate init /assets/ ./public`,
	Args:    cobra.RangeArgs(1, 2),
	RunE:    runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	loc, ok := cfg.FindLocation(args[0])
	if !ok {
		return fmt.Errorf("no enabled location with prefix %s", args[0])
	}
	if loc.Driver != "database" {
		return fmt.Errorf("location %s uses driver %q, init needs a database location", loc.Prefix, loc.Driver)
	}

	cluster := &database.Cluster{}
	defer cluster.Shutdown()

	if err := cluster.ReadConfigFile(loc.Conf); err != nil {
		return err
	}
	if err := cluster.Connect(ctx); err != nil {
		return err
	}
	if err := cluster.Migrate(ctx, loc.Pool); err != nil {
		return err
	}
	slog.Info("pool table ready", "pool", loc.Pool)

	if len(args) < 2 {
		return nil
	}

	dir := args[1]
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("source directory: %w", err)
	}

	slog.Info("loading directory", "path", dir, "pool", loc.Pool)

	var files int
	var total uint64
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if err := cluster.Put(ctx, loc.Pool, key, data, info.ModTime()); err != nil {
			return err
		}

		slog.Debug("object stored", "key", key, "size", len(data))
		files++
		total += uint64(len(data))
		return nil
	})
	if err != nil {
		return fmt.Errorf("load %s: %w", dir, err)
	}

	slog.Info("initialization complete", "objects", files, "size", humanize.IBytes(total))
	return nil
}
