// Command eemsd runs the EEMS UPnP/DLNA media server: it scans configured
// content roots into a local store, then serves Content Directory Browse
// requests and ranged content streams, answering SSDP discovery requests
// for as long as the process runs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eemsproject/eems/internal/config"
	"github.com/eemsproject/eems/internal/httpserver"
	"github.com/eemsproject/eems/internal/scanner"
	"github.com/eemsproject/eems/internal/ssdp"
	"github.com/eemsproject/eems/internal/store"
	"github.com/eemsproject/eems/internal/stream"
	"github.com/eemsproject/eems/internal/upnp"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "eemsd",
		Short: "EEMS UPnP/DLNA media server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to TOML configuration file (required)")
	root.MarkPersistentFlagRequired("config")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("eemsd: load config: %w", err)
	}

	log := newLogger(cfg.Logging)

	st, wasFresh, err := store.OpenOrCreate(cfg.DB.Path, log)
	if err != nil {
		return fmt.Errorf("eemsd: open store: %w", err)
	}
	defer st.Close()
	if wasFresh {
		log.Info().Str("path", cfg.DB.Path).Msg("eemsd: created new content store")
	}

	sc, err := scanner.New(st, log)
	if err != nil {
		return fmt.Errorf("eemsd: init scanner: %w", err)
	}

	if err := sc.ScanAll(cfg.Content); err != nil {
		log.Warn().Err(err).Msg("eemsd: scan completed with errors")
	}

	baseURL := httpserver.BaseURL(cfg.Server.Hostname, cfg.Server.Port)

	upnpHandler := upnp.New(st, cfg.Server.UUID, cfg.Server.Name, baseURL, log)
	streamHandler := stream.New(st, log)
	mux := httpserver.New(upnpHandler, streamHandler, log)
	srv := httpserver.NewServer(fmt.Sprintf(":%d", cfg.Server.Port), mux)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ssdpServer := ssdp.New(cfg.Server.UUID, baseURL, log)
	ssdpErrCh := make(chan error, 1)
	go func() {
		ssdpErrCh <- ssdpServer.Run(ctx)
	}()

	httpErrCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("eemsd: HTTP server listening")
		if err := srv.ListenAndServe(); err != nil {
			httpErrCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("eemsd: shutting down")
	case err := <-httpErrCh:
		log.Error().Err(err).Msg("eemsd: HTTP server failed")
		stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpserver.Shutdown(shutdownCtx, srv); err != nil {
		log.Error().Err(err).Msg("eemsd: HTTP shutdown error")
	}

	if err := <-ssdpErrCh; err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("eemsd: SSDP server exited with error")
	}

	return nil
}

func newLogger(cfg config.Logging) zerolog.Logger {
	if cfg.Path == "" {
		return zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	}

	flags := os.O_CREATE | os.O_WRONLY
	if cfg.Truncate {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}

	f, err := os.OpenFile(cfg.Path, flags, 0o644)
	if err != nil {
		log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
		log.Warn().Err(err).Str("path", cfg.Path).Msg("eemsd: failed to open log file, logging to console")
		return log
	}

	return zerolog.New(f).With().Timestamp().Logger()
}
