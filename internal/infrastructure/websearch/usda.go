package websearch

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
)

const maxNutrients = 10

// USDA is a client for the FoodData Central search API
type USDA struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewUSDA creates a client. An empty key disables it.
func NewUSDA(baseURL, apiKey string, client *http.Client) *USDA {
	return &USDA{baseURL: strings.TrimSuffix(baseURL, "/"), apiKey: apiKey, client: client}
}

// Enabled reports whether an API key is configured
func (u *USDA) Enabled() bool { return u.apiKey != "" }

type usdaResponse struct {
	Foods []struct {
		Description   string `json:"description"`
		FoodNutrients []struct {
			NutrientName string  `json:"nutrientName"`
			Value        float64 `json:"value"`
			UnitName     string  `json:"unitName"`
		} `json:"foodNutrients"`
	} `json:"foods"`
}

// Lookup returns the best match for ingredient with its first ten
// nutrients, or nil when nothing matched.
func (u *USDA) Lookup(ctx context.Context, ingredient string) (*recipe.Nutrition, error) {
	if !u.Enabled() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("api_key", u.apiKey)
	params.Set("query", ingredient)
	params.Set("pageSize", "1")

	var resp usdaResponse
	if err := getJSON(ctx, u.client, "usda", u.baseURL, "/fdc/v1/foods/search", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Foods) == 0 {
		return nil, nil
	}

	food := resp.Foods[0]
	n := &recipe.Nutrition{Description: food.Description, Nutrients: []recipe.Nutrient{}}
	for i, fn := range food.FoodNutrients {
		if i == maxNutrients {
			break
		}
		n.Nutrients = append(n.Nutrients, recipe.Nutrient{Name: fn.NutrientName, Amount: fn.Value, Unit: fn.UnitName})
	}
	return n, nil
}
