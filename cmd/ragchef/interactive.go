package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alchemorsel/ragchef/internal/ports/inbound"
)

const conditionExamples = `Examples:
  • 'under 15 mins' - for time constraints
  • 'vegetarian easy' - for dietary and difficulty
  • 'serves 4 people' or 'for 6 people' - for serving size
  • 'serves 2 vegetarian under 20 mins' - combined conditions
  • Leave empty for 1 serving, medium difficulty`

func newInteractiveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Prompt for ingredients and conditions and print recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withAssistant(cmd.Context(), func(ctx context.Context, a inbound.RecipeAssistant) error {
				return runInteractive(ctx, a, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
}

// runInteractive loops until exit, quit, end of input or cancellation
func runInteractive(ctx context.Context, a inbound.RecipeAssistant, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	read := func(prompt string) (string, bool) {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	fmt.Fprintln(out, "\n🍳 Welcome to Recipe Generator!")
	fmt.Fprintln(out, "Type 'exit' or 'quit' to leave")
	fmt.Fprintln(out, strings.Repeat("-", 50))

	for ctx.Err() == nil {
		fmt.Fprintln(out, "\n📝 Enter your available ingredients (comma-separated):")
		line, ok := read("Ingredients: ")
		if !ok {
			break
		}
		switch strings.ToLower(line) {
		case "exit", "quit":
			fmt.Fprintln(out, "\nGoodbye! 👋")
			return nil
		case "":
			fmt.Fprintln(out, "Please enter at least one ingredient!")
			continue
		}

		var ingredients []string
		for _, ing := range strings.Split(line, ",") {
			if ing = strings.TrimSpace(ing); ing != "" {
				ingredients = append(ingredients, ing)
			}
		}

		fmt.Fprintln(out, "\n⚙️  Enter any conditions (optional):")
		fmt.Fprintln(out, conditionExamples)
		conditions, ok := read("Conditions: ")
		if !ok {
			break
		}

		result := a.Search(ctx, ingredients, conditions)
		if len(result.RejectedIngredients) > 0 {
			fmt.Fprintf(out, "\nIgnored non-food items: %s\n", strings.Join(result.RejectedIngredients, ", "))
		}
		renderRecipe(out, result.Recipe)
		fmt.Fprintf(out, "\n%s\n", strings.Repeat("-", 50))
	}

	fmt.Fprintln(out, "\n\nGoodbye! 👋")
	return scanner.Err()
}
