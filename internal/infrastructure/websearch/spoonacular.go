package websearch

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
)

// SourceSpoonacular tags recipes found on Spoonacular.
const SourceSpoonacular = "spoonacular"

// Spoonacular is a client for the Spoonacular recipe API
type Spoonacular struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewSpoonacular creates a client. An empty key disables it.
func NewSpoonacular(baseURL, apiKey string, client *http.Client) *Spoonacular {
	return &Spoonacular{baseURL: strings.TrimSuffix(baseURL, "/"), apiKey: apiKey, client: client}
}

// Enabled reports whether an API key is configured
func (s *Spoonacular) Enabled() bool { return s.apiKey != "" }

type spoonacularHit struct {
	ID                    int    `json:"id"`
	Title                 string `json:"title"`
	Image                 string `json:"image"`
	UsedIngredientCount   int    `json:"usedIngredientCount"`
	MissedIngredientCount int    `json:"missedIngredientCount"`
}

type spoonacularInfo struct {
	ID                  int    `json:"id"`
	Title               string `json:"title"`
	Summary             string `json:"summary"`
	Image               string `json:"image"`
	SourceURL           string `json:"sourceUrl"`
	ReadyInMinutes      int    `json:"readyInMinutes"`
	Servings            int    `json:"servings"`
	Instructions        string `json:"instructions"`
	ExtendedIngredients []struct {
		Original string `json:"original"`
	} `json:"extendedIngredients"`
}

// FindByIngredients returns up to five recipes using the given ingredients
func (s *Spoonacular) FindByIngredients(ctx context.Context, ingredients []string) ([]recipe.WebRecipe, error) {
	if !s.Enabled() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("apiKey", s.apiKey)
	params.Set("ingredients", strings.Join(ingredients, ","))
	params.Set("number", "5")
	params.Set("limitLicense", "true")
	params.Set("ranking", "1")
	params.Set("ignorePantry", "false")

	var hits []spoonacularHit
	if err := getJSON(ctx, s.client, SourceSpoonacular, s.baseURL, "/recipes/findByIngredients", params, &hits); err != nil {
		return nil, err
	}

	out := make([]recipe.WebRecipe, 0, len(hits))
	for _, h := range hits {
		out = append(out, recipe.WebRecipe{
			ID:                    strconv.Itoa(h.ID),
			Title:                 h.Title,
			Image:                 h.Image,
			UsedIngredientCount:   h.UsedIngredientCount,
			MissedIngredientCount: h.MissedIngredientCount,
			Source:                SourceSpoonacular,
		})
	}
	return out, nil
}

// Details returns the full recipe, or recipe.ErrRecipeNotFound
func (s *Spoonacular) Details(ctx context.Context, id string) (*recipe.RecipeDetails, error) {
	if !s.Enabled() || id == "" {
		return nil, recipe.ErrRecipeNotFound
	}

	params := url.Values{}
	params.Set("apiKey", s.apiKey)
	params.Set("includeNutrition", "true")

	var info spoonacularInfo
	err := getJSON(ctx, s.client, SourceSpoonacular, s.baseURL, "/recipes/"+url.PathEscape(id)+"/information", params, &info)
	var se *statusError
	if errors.As(err, &se) && se.status == http.StatusNotFound {
		return nil, recipe.ErrRecipeNotFound
	}
	if err != nil {
		return nil, err
	}

	details := &recipe.RecipeDetails{
		ID:             strconv.Itoa(info.ID),
		Title:          info.Title,
		Summary:        info.Summary,
		Image:          info.Image,
		SourceURL:      info.SourceURL,
		ReadyInMinutes: info.ReadyInMinutes,
		Servings:       info.Servings,
		Instructions:   info.Instructions,
		Source:         SourceSpoonacular,
	}
	for _, ing := range info.ExtendedIngredients {
		details.Ingredients = append(details.Ingredients, ing.Original)
	}
	return details, nil
}
