package websearch

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
)

// SourceEdamam tags recipes found on Edamam.
const SourceEdamam = "edamam"

// Edamam is a client for the Edamam recipe search API
type Edamam struct {
	baseURL string
	appID   string
	appKey  string
	client  *http.Client
}

// NewEdamam creates a client. Missing credentials disable it.
func NewEdamam(baseURL, appID, appKey string, client *http.Client) *Edamam {
	return &Edamam{baseURL: strings.TrimSuffix(baseURL, "/"), appID: appID, appKey: appKey, client: client}
}

// Enabled reports whether credentials are configured
func (e *Edamam) Enabled() bool { return e.appID != "" && e.appKey != "" }

type edamamResponse struct {
	Hits []struct {
		Recipe struct {
			URI             string   `json:"uri"`
			Label           string   `json:"label"`
			Image           string   `json:"image"`
			URL             string   `json:"url"`
			IngredientLines []string `json:"ingredientLines"`
			Calories        float64  `json:"calories"`
			TotalTime       float64  `json:"totalTime"`
		} `json:"recipe"`
	} `json:"hits"`
}

// Search finds up to five recipes matching the ingredients and conditions
func (e *Edamam) Search(ctx context.Context, ingredients []string, conditions string) ([]recipe.WebRecipe, error) {
	if !e.Enabled() {
		return nil, nil
	}

	parts := make([]string, 0, len(ingredients)+1)
	parts = append(parts, ingredients...)
	if conditions != "" {
		parts = append(parts, conditions)
	}

	params := url.Values{}
	params.Set("q", strings.Join(parts, " "))
	params.Set("app_id", e.appID)
	params.Set("app_key", e.appKey)
	params.Set("from", "0")
	params.Set("to", "5")
	if strings.Contains(strings.ToLower(conditions), "min") {
		params.Set("time", "1-30")
	}

	var resp edamamResponse
	if err := getJSON(ctx, e.client, SourceEdamam, e.baseURL, "/search", params, &resp); err != nil {
		return nil, err
	}

	out := make([]recipe.WebRecipe, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		r := h.Recipe
		id := r.URI
		if i := strings.Index(r.URI, "#"); i >= 0 {
			id = r.URI[i+1:]
		}
		out = append(out, recipe.WebRecipe{
			ID:          id,
			Title:       r.Label,
			Image:       r.Image,
			URL:         r.URL,
			Ingredients: r.IngredientLines,
			Calories:    r.Calories,
			TotalTime:   r.TotalTime,
			Source:      SourceEdamam,
		})
	}
	return out, nil
}
