package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzwordStrategies/MarketingOS/internal/domain"
)

func TestSimulatedCoversEveryCategory(t *testing.T) {
	r := Simulated(0)
	for _, category := range domain.Categories() {
		h, err := r.Resolve(category)
		require.NoError(t, err, "category %s", category)

		result, err := h(context.Background(), domain.TaskTemplate{Name: "t", Category: category}, Context{})
		require.NoError(t, err, "category %s", category)
		assert.NotEmpty(t, result, "category %s", category)
	}
}

func TestResolveUnknownCategory(t *testing.T) {
	r := Simulated(0)
	_, err := r.Resolve(domain.TaskCategory("telepathy"))
	assert.Error(t, err)
}

func TestContentGenerationUsesInputs(t *testing.T) {
	r := Simulated(0)
	h, err := r.Resolve(domain.CategoryContentGeneration)
	require.NoError(t, err)

	result, err := h(context.Background(), domain.TaskTemplate{
		Name:         "Content Generation",
		Category:     domain.CategoryContentGeneration,
		ExecutorHint: "gpt4",
	}, Context{Inputs: map[string]any{"productName": "Widget", "industry": "SaaS"}})
	require.NoError(t, err)

	assert.Equal(t, "AI-generated content for Widget", result["content"])
	assert.Equal(t, "gpt4", result["provider"])
}

func TestLandingPageSlugifiesProductName(t *testing.T) {
	r := Simulated(0)
	h, err := r.Resolve(domain.CategoryLandingPage)
	require.NoError(t, err)

	result, err := h(context.Background(), domain.TaskTemplate{Category: domain.CategoryLandingPage}, Context{
		Inputs: map[string]any{"productName": "My Great Widget"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://landing.marketingos.com/my-great-widget", result["url"])
}

func TestSimulatedDelayHonorsContext(t *testing.T) {
	r := Simulated(time.Minute)
	h, err := r.Resolve(domain.CategorySEO)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = h(ctx, domain.TaskTemplate{Category: domain.CategorySEO}, Context{})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	var taskErr *domain.TaskExecutionError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, domain.CategorySEO, taskErr.Category)
}
