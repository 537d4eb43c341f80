package main

import (
	"context"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ddellaringa6/btis/internal/config"
	httpserver "github.com/ddellaringa6/btis/internal/interfaces/http"
)

// runMonitor starts the monitor HTTP server and blocks until interrupted.
func runMonitor(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetString("port")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if host == "" {
		host = cfg.Monitor.Host
	}
	if port == "" {
		port = cfg.Monitor.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := net.JoinHostPort(host, port)
	server := httpserver.NewServer(addr, cfg.Output.Path, httpserver.GetMetrics())
	return server.ListenAndServe(ctx)
}
