package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BuzzwordStrategies/MarketingOS/internal/domain"
)

// Simulated builds a registry covering every category with deterministic
// mock handlers. stepDelay stands in for the latency of the real provider
// call; zero disables it. The payload shapes match what the real
// integrations are expected to return, so swapping in live handlers does
// not change the engine or its observers.
func Simulated(stepDelay time.Duration) Registry {
	r := make(Registry)
	r.Register(domain.CategoryContentGeneration, simulate(stepDelay, contentGeneration))
	r.Register(domain.CategoryLandingPage, simulate(stepDelay, landingPage))
	r.Register(domain.CategoryEmailSequence, simulate(stepDelay, emailSequence))
	r.Register(domain.CategorySocialCampaign, simulate(stepDelay, socialCampaign))
	r.Register(domain.CategoryCompetitorAnalysis, simulate(stepDelay, competitorAnalysis))
	r.Register(domain.CategoryAdCampaign, simulate(stepDelay, adCampaign))
	r.Register(domain.CategorySEO, simulate(stepDelay, seoOptimization))
	r.Register(domain.CategoryAnalytics, simulate(stepDelay, analyticsSetup))
	r.Register(domain.CategoryFulfillment, simulate(stepDelay, fulfillment))
	return r
}

// simulate wraps a payload generator with the fake provider latency.
func simulate(delay time.Duration, gen func(tmpl domain.TaskTemplate, tc Context) Result) Handler {
	return func(ctx context.Context, tmpl domain.TaskTemplate, tc Context) (Result, error) {
		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return nil, &domain.TaskExecutionError{Category: tmpl.Category, Message: ctx.Err().Error()}
			case <-timer.C:
			}
		}
		return gen(tmpl, tc), nil
	}
}

func contentGeneration(tmpl domain.TaskTemplate, tc Context) Result {
	product := tc.Input("productName", "Your Product")
	industry := tc.Input("industry", "Technology")
	return Result{
		"content": fmt.Sprintf("AI-generated content for %s", product),
		"headlines": []string{
			fmt.Sprintf("Revolutionary %s - Transform Your Business", product),
			fmt.Sprintf("The Future of %s is Here", industry),
			fmt.Sprintf("%s: Your Competitive Advantage", product),
		},
		"descriptions": []string{
			fmt.Sprintf("Discover how %s can revolutionize your %s operations.", product, industry),
			fmt.Sprintf("Join thousands of satisfied customers who have transformed their business with %s.", product),
		},
		"provider": tmpl.ExecutorHint,
	}
}

func landingPage(tmpl domain.TaskTemplate, tc Context) Result {
	product := tc.Input("productName", "your-product")
	slug := strings.ReplaceAll(strings.ToLower(product), " ", "-")
	return Result{
		"url":                  fmt.Sprintf("https://landing.marketingos.com/%s", slug),
		"status":               "created",
		"conversion_optimized": true,
		"provider":             tmpl.ExecutorHint,
	}
}

func emailSequence(tmpl domain.TaskTemplate, tc Context) Result {
	return Result{
		"sequence_id":              fmt.Sprintf("seq_%s", strings.ReplaceAll(strings.ToLower(tmpl.Name), " ", "_")),
		"email_count":              7,
		"automation_active":        true,
		"expected_conversion_rate": 0.032,
		"provider":                 tmpl.ExecutorHint,
	}
}

func socialCampaign(tmpl domain.TaskTemplate, tc Context) Result {
	return Result{
		"platforms":       []string{"facebook", "instagram", "linkedin", "twitter"},
		"posts_created":   20,
		"scheduled_posts": 30,
		"estimated_reach": 50000,
		"provider":        tmpl.ExecutorHint,
	}
}

func competitorAnalysis(tmpl domain.TaskTemplate, tc Context) Result {
	return Result{
		"competitors_analyzed":  5,
		"weaknesses_identified": 12,
		"opportunities_found":   8,
		"strategic_advantages": []string{
			"Price positioning opportunity",
			"Feature gap in market",
			"Underserved customer segment",
		},
		"provider": tmpl.ExecutorHint,
	}
}

func adCampaign(tmpl domain.TaskTemplate, tc Context) Result {
	budget := 1000.0
	if v, ok := tc.Inputs["adBudget"].(float64); ok {
		budget = v
	}
	return Result{
		"campaign_id":           fmt.Sprintf("camp_%s", strings.ReplaceAll(strings.ToLower(tmpl.Name), " ", "_")),
		"platforms":             []string{"google", "facebook"},
		"budget":                budget,
		"target_audience":       tc.Input("targetAudience", "general"),
		"expected_ctr":          0.025,
		"estimated_conversions": 32,
		"provider":              tmpl.ExecutorHint,
	}
}

func seoOptimization(tmpl domain.TaskTemplate, tc Context) Result {
	return Result{
		"keywords_targeted":            25,
		"content_optimized":            true,
		"meta_tags_updated":            true,
		"expected_ranking_improvement": "15-25 positions",
		"provider":                     tmpl.ExecutorHint,
	}
}

func analyticsSetup(tmpl domain.TaskTemplate, tc Context) Result {
	return Result{
		"tracking_setup":    true,
		"conversion_goals":  5,
		"dashboard_created": true,
		"realtime_tracking": true,
		"provider":          tmpl.ExecutorHint,
	}
}

func fulfillment(tmpl domain.TaskTemplate, tc Context) Result {
	return Result{
		"fulfillment_partner": tmpl.ExecutorHint,
		"setup_complete":      true,
		"automated_ordering":  true,
		"quality_assurance":   true,
	}
}
