package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/alchemorsel/ragchef/internal/infrastructure/container"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd.Context(), fx.New(
				fx.NopLogger,
				container.Options(opts.configPath),
			))
		},
	}
}

func newMCPServerCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the recipe MCP server over the recipe web APIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd.Context(), fx.New(
				fx.NopLogger,
				fx.Supply(container.ConfigPath(opts.configPath)),
				container.MCPServerModule,
			))
		},
	}
}

// runApp starts app and blocks until a signal or an fx shutdown
func runApp(ctx context.Context, app *fx.App) error {
	if err := app.Err(); err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	startCtx, startCancel := context.WithTimeout(ctx, 30*time.Second)
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 35*time.Second)
	defer stopCancel()
	return app.Stop(stopCtx)
}
