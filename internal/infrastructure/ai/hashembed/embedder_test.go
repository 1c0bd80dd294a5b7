package hashembed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func TestEmbedder(t *testing.T) {
	ctx := context.Background()
	e := New(256)

	t.Run("Embed_ShouldBeDeterministicAndNormalised", func(t *testing.T) {
		a, err := e.Embed(ctx, "Tomato basil pasta")
		require.NoError(t, err)
		b, err := e.Embed(ctx, "tomato, basil pasta!")
		require.NoError(t, err)

		assert.Len(t, a, 256)
		assert.Equal(t, a, b)
		assert.InDelta(t, 1.0, math.Sqrt(cosine(a, a)), 1e-5)
	})

	t.Run("Embed_ShouldRankOverlappingTextHigher", func(t *testing.T) {
		query, _ := e.Embed(ctx, "tomato basil")
		near, _ := e.Embed(ctx, "fresh tomato and basil salad")
		far, _ := e.Embed(ctx, "chocolate brownie dessert")

		assert.Greater(t, cosine(query, near), cosine(query, far))
	})

	t.Run("Embed_ShouldReturnZeroVectorForPunctuation", func(t *testing.T) {
		vec, err := e.Embed(ctx, "!!!")
		require.NoError(t, err)
		assert.Equal(t, make([]float32, 256), vec)
	})

	t.Run("Embed_ShouldHonourCancelledContext", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := e.Embed(cctx, "x")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Name_ShouldIncludeDimension", func(t *testing.T) {
		assert.Equal(t, "hash:256", e.Name())
		assert.Equal(t, "hash:3072", New(0).Name())
	})
}
