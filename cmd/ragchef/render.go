package main

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/alchemorsel/ragchef/internal/application/pipeline"
	"github.com/alchemorsel/ragchef/internal/domain/recipe"
)

const (
	banner    = "============================================================"
	underline = "--------------------"
)

// renderRecipe prints a recipe the way the interactive prompt shows it.
// Refusals print only their title and explanation.
func renderRecipe(w io.Writer, r recipe.GeneratedRecipe) {
	if pipeline.IsUnable(r) || strings.Contains(r.Title, "Invalid") {
		fmt.Fprintf(w, "\n❌ %s\n", r.Title)
		fmt.Fprintf(w, "💡 %s\n", r.AdditionalNotes)
		return
	}

	fmt.Fprintf(w, "\n%s\n", banner)
	fmt.Fprintf(w, "🍳 %s\n", r.Title)
	fmt.Fprintln(w, banner)

	fmt.Fprintf(w, "⏱️  Cooking Time: %s\n", r.CookingTime)
	fmt.Fprintf(w, "👨‍🍳 Difficulty: %s\n", capitalize(r.Difficulty))
	fmt.Fprintf(w, "🍽️  Servings: %d\n", r.Servings)

	fmt.Fprint(w, "\n🥕 INGREDIENTS:\n", underline, "\n")
	for i, ing := range r.Ingredients {
		fmt.Fprintf(w, "%2d. %s\n", i+1, ing)
	}

	fmt.Fprint(w, "\n📝 INSTRUCTIONS:\n", underline, "\n")
	for i, step := range r.Instructions {
		fmt.Fprintf(w, "%2d. %s\n", i+1, step)
	}

	if r.AdditionalNotes != "" {
		fmt.Fprint(w, "\n💡 ADDITIONAL NOTES:\n", underline, "\n")
		fmt.Fprintln(w, r.AdditionalNotes)
	}

	fmt.Fprintf(w, "\n%s\n", banner)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
