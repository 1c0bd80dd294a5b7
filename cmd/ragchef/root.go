package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/alchemorsel/ragchef/internal/infrastructure/config"
	"github.com/alchemorsel/ragchef/internal/infrastructure/container"
	"github.com/alchemorsel/ragchef/internal/ports/inbound"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ragchef",
		Short: "Recipe generator backed by a recipe knowledge base",
		Long: `ragchef generates recipes from the ingredients you have, grounded in
recipes ingested into a vector store and in results from recipe web APIs.

First-time setup:
  1. ragchef ingest data/recipes.json
  2. ragchef interactive`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ./config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")

	cmd.AddCommand(
		newIngestCmd(opts),
		newInteractiveCmd(opts),
		newGenerateCmd(opts),
		newServeCmd(opts),
		newMCPServerCmd(opts),
	)
	return cmd
}

// cliConfig keeps log output on stderr, quiet unless verbose, so stdout
// carries only the recipes.
func (o *rootOptions) cliConfig(cfg *config.Config) *config.Config {
	c := *cfg
	c.App.LogFormat = "console"
	c.App.LogOutput = "stderr"
	if o.verbose {
		c.App.LogLevel = "debug"
	} else {
		c.App.LogLevel = "warn"
	}
	return &c
}

// withAssistant builds the pipeline, runs fn against it and releases
// every connection afterwards.
func (o *rootOptions) withAssistant(ctx context.Context, fn func(context.Context, inbound.RecipeAssistant) error) error {
	var assistant inbound.RecipeAssistant
	app := fx.New(
		fx.NopLogger,
		fx.Supply(container.ConfigPath(o.configPath)),
		container.CoreModule,
		fx.Decorate(o.cliConfig),
		fx.Populate(&assistant),
	)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	return fn(ctx, assistant)
}
