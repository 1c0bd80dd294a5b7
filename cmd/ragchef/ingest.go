package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alchemorsel/ragchef/internal/ports/inbound"
	apperrors "github.com/alchemorsel/ragchef/pkg/errors"
)

func newIngestCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>",
		Short: "Chunk, embed and store a recipe file (JSON or YAML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()

			return opts.withAssistant(cmd.Context(), func(ctx context.Context, a inbound.RecipeAssistant) error {
				fmt.Fprintf(out, "Starting data ingestion from %s...\n", path)

				report, err := a.IngestFile(ctx, path)
				if apperrors.Is(err, apperrors.CodeNotFound) {
					return fmt.Errorf("recipe file %s not found", path)
				}
				if err != nil {
					fmt.Fprintln(out, "Data ingestion failed!")
					return err
				}

				fmt.Fprintf(out, "Ingested %d recipes as %d chunks (%d stored)\n",
					report.Documents, report.Chunks, report.Stored)
				fmt.Fprintln(out, "Data ingestion completed successfully!")
				return nil
			})
		},
	}
}
