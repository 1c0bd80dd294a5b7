package websearch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/infrastructure/config"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

const (
	maxNutritionLookups = 5
	maxSummaries        = 3
)

// Aggregator merges every configured recipe source. It backs the MCP
// server and can serve the pipeline directly.
type Aggregator struct {
	spoonacular *Spoonacular
	edamam      *Edamam
	usda        *USDA
	summarizer  *Summarizer
	cache       outbound.CacheRepository
	ttl         time.Duration
	logger      *zap.Logger
}

var _ outbound.WebRecipeSearcher = (*Aggregator)(nil)

// NewAggregator builds the sources from configuration. cache may be nil.
func NewAggregator(cfg config.WebSearchConfig, cache outbound.CacheRepository, logger *zap.Logger) *Aggregator {
	client := &http.Client{Timeout: cfg.Timeout}
	a := &Aggregator{
		spoonacular: NewSpoonacular(cfg.SpoonacularURL, cfg.SpoonacularKey, client),
		edamam:      NewEdamam(cfg.EdamamURL, cfg.EdamamAppID, cfg.EdamamAppKey, client),
		usda:        NewUSDA(cfg.USDAURL, cfg.USDAKey, client),
		cache:       cache,
		ttl:         cfg.ResultTTL,
		logger:      logger.Named("websearch"),
	}
	if cfg.PageSummaries {
		a.summarizer = NewSummarizer(cfg.Timeout)
	}

	a.logger.Info("Web recipe sources configured",
		zap.Bool("spoonacular", a.spoonacular.Enabled()),
		zap.Bool("edamam", a.edamam.Enabled()),
		zap.Bool("usda", a.usda.Enabled()),
		zap.Bool("page_summaries", a.summarizer != nil))
	return a
}

// HealthCheck reports whether at least one recipe source is configured
func (a *Aggregator) HealthCheck(context.Context) bool {
	return a.spoonacular.Enabled() || a.edamam.Enabled()
}

// SearchWebRecipes queries Spoonacular and Edamam concurrently. A failing
// source is logged and contributes nothing.
func (a *Aggregator) SearchWebRecipes(ctx context.Context, ingredients []string, conditions string) ([]recipe.WebRecipe, error) {
	key := searchKey(ingredients, conditions)
	if cached, ok := a.cached(ctx, key); ok {
		return cached, nil
	}

	var spoon, edam []recipe.WebRecipe
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := a.spoonacular.FindByIngredients(gctx, ingredients)
		if err != nil {
			a.logger.Warn("Spoonacular search failed", zap.Error(err))
			return nil
		}
		spoon = r
		return nil
	})
	g.Go(func() error {
		r, err := a.edamam.Search(gctx, ingredients, conditions)
		if err != nil {
			a.logger.Warn("Edamam search failed", zap.Error(err))
			return nil
		}
		edam = r
		return nil
	})
	_ = g.Wait()

	results := make([]recipe.WebRecipe, 0, len(spoon)+len(edam))
	results = append(results, spoon...)
	results = append(results, edam...)
	a.summarize(ctx, results)

	a.store(ctx, key, results)
	return results, nil
}

// RecipeDetails returns the full recipe. Only Spoonacular offers details;
// the source defaults to it.
func (a *Aggregator) RecipeDetails(ctx context.Context, id, source string) (*recipe.RecipeDetails, error) {
	switch source {
	case "", SourceSpoonacular:
		return a.spoonacular.Details(ctx, id)
	default:
		return nil, recipe.ErrRecipeNotFound
	}
}

// Nutrition looks up the first five ingredients. Ingredients without a
// match are absent from the result.
func (a *Aggregator) Nutrition(ctx context.Context, ingredients []string) (map[string]recipe.Nutrition, error) {
	out := make(map[string]recipe.Nutrition)
	for i, ing := range ingredients {
		if i == maxNutritionLookups {
			break
		}
		n, err := a.usda.Lookup(ctx, ing)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			a.logger.Warn("USDA lookup failed", zap.String("ingredient", ing), zap.Error(err))
			continue
		}
		if n != nil {
			out[ing] = *n
		}
	}
	return out, nil
}

func (a *Aggregator) summarize(ctx context.Context, recipes []recipe.WebRecipe) {
	if a.summarizer == nil {
		return
	}
	done := 0
	for i := range recipes {
		if done == maxSummaries {
			return
		}
		if recipes[i].Summary != "" || recipes[i].URL == "" {
			continue
		}
		done++
		summary, err := a.summarizer.Describe(ctx, recipes[i].URL)
		if err != nil {
			a.logger.Debug("Page summary failed", zap.String("url", recipes[i].URL), zap.Error(err))
			continue
		}
		recipes[i].Summary = summary
	}
}

func (a *Aggregator) cached(ctx context.Context, key string) ([]recipe.WebRecipe, bool) {
	if a.cache == nil || a.ttl <= 0 {
		return nil, false
	}
	raw, err := a.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, outbound.ErrCacheMiss) {
			a.logger.Debug("Web search cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var out []recipe.WebRecipe
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (a *Aggregator) store(ctx context.Context, key string, recipes []recipe.WebRecipe) {
	if a.cache == nil || a.ttl <= 0 || len(recipes) == 0 {
		return
	}
	raw, err := json.Marshal(recipes)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, raw, a.ttl); err != nil {
		a.logger.Debug("Web search cache write failed", zap.Error(err))
	}
}

func searchKey(ingredients []string, conditions string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.Join(ingredients, ",") + "|" + conditions)))
	return "websearch:" + hex.EncodeToString(sum[:])
}
