package main

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/ports/inbound"
	apperrors "github.com/alchemorsel/ragchef/pkg/errors"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		ingredients []string
		conditions  string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one recipe and exit",
		Example: `  ragchef generate --ingredients chicken,rice --conditions "under 30 mins serves 2"
  ragchef generate -i tofu,broccoli --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ingredients) == 0 {
				return errors.New("at least one ingredient is required")
			}
			out := cmd.OutOrStdout()

			return opts.withAssistant(cmd.Context(), func(ctx context.Context, a inbound.RecipeAssistant) error {
				result := a.Search(ctx, ingredients, conditions)
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					if err := enc.Encode(result); err != nil {
						return err
					}
				} else {
					renderRecipe(out, result.Recipe)
				}
				return outcomeError(result)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&ingredients, "ingredients", "i", nil, "comma-separated ingredients")
	cmd.Flags().StringVar(&conditions, "conditions", "", `free-text conditions, e.g. "vegetarian easy under 20 mins"`)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

// outcomeError fails the command when the model could not produce a recipe,
// so scripts see a non-zero exit status.
func outcomeError(result recipe.Result) error {
	if result.Outcome != recipe.OutcomeError {
		return nil
	}
	var cause error
	if len(result.Recipe.Instructions) > 0 {
		cause = errors.New(result.Recipe.Instructions[0])
	}
	return apperrors.NewGenerationError(cause)
}
