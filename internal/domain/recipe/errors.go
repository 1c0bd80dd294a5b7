package recipe

import "errors"

// Domain errors for recipe operations

var (
	// Document validation errors
	ErrMissingTitle        = errors.New("recipe document must have a title")
	ErrNoIngredients       = errors.New("recipe must have at least one ingredient")
	ErrNoInstructions      = errors.New("recipe must have at least one instruction")
	ErrUnsupportedFormat   = errors.New("unsupported recipe file format")
	ErrEmptyEmbedding      = errors.New("embedding is empty")
	ErrDimensionMismatch   = errors.New("embedding dimension mismatch")
	ErrRecipeNotFound      = errors.New("recipe not found")
	ErrMalformedGeneration = errors.New("model response is not a recipe object")
)

// Validate checks a document has the fields chunking needs.
func (d Document) Validate() error {
	if d.Title == "" {
		return ErrMissingTitle
	}
	if len(d.Ingredients) == 0 {
		return ErrNoIngredients
	}
	if len(d.Instructions) == 0 {
		return ErrNoInstructions
	}
	return nil
}
