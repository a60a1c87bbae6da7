package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sagarc03/stowgate"
	"github.com/sagarc03/stowgate/config"
	stowgatehttp "github.com/sagarc03/stowgate/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	Long:  `Connect every configured storage pool and serve objects over HTTP.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5780, "HTTP server port (env: STOWGATE_SERVER_PORT)")
	serveCmd.Flags().String("chunk-size", "", "bytes read per storage call, e.g. 1MiB (env: STOWGATE_GATEWAY_CHUNK_SIZE)")
	serveCmd.Flags().String("if-modified-since", "", "If-Modified-Since mode: off, exact, before")
	serveCmd.Flags().String("metrics-path", "", "path of the Prometheus endpoint, empty to disable")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	locations, err := cfg.GatewayLocations()
	if err != nil {
		return fmt.Errorf("invalid locations: %w", err)
	}

	chunkSize, err := cfg.Gateway.ChunkSizeBytes()
	if err != nil {
		return fmt.Errorf("invalid gateway config: %w", err)
	}

	imsMode, err := cfg.Gateway.IMSMode()
	if err != nil {
		return fmt.Errorf("invalid gateway config: %w", err)
	}

	registry, err := openRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	defer registry.Close()

	gateway, err := stowgate.NewGateway(registry, stowgate.Config{
		ChunkSize: chunkSize,
		IMSMode:   imsMode,
	})
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	handlerConfig := stowgatehttp.HandlerConfig{
		Locations:   locations,
		CORS:        cfg.CORS,
		MetricsPath: cfg.Server.MetricsPath,
	}
	if cfg.Server.MetricsPath != "" {
		handlerConfig.Metrics = stowgatehttp.NewMetrics()
	}

	handler := stowgatehttp.NewHandler(&handlerConfig, gateway)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	for _, loc := range locations {
		slog.Info("serving location", "prefix", loc.Prefix, "pool", loc.Pool, "throttle", rateString(loc.Rate))
	}

	slog.Info("starting server", "addr", addr, "chunk_size", humanize.IBytes(uint64(chunkSize)), "if_modified_since", cfg.Gateway.IfModifiedSince)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

func rateString(rate uint64) string {
	if rate == 0 {
		return "off"
	}
	return humanize.IBytes(rate) + "/s"
}
