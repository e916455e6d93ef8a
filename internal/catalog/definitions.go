package catalog

import "github.com/BuzzwordStrategies/MarketingOS/internal/domain"

// builtins returns the hand-authored marketing workflow definitions.
// Ordering of task templates is execution order.
func builtins() []*domain.WorkflowDefinition {
	return []*domain.WorkflowDefinition{
		{
			ID:                       "product-launch",
			Name:                     "Product Launch Campaign",
			Description:              "Complete product launch with landing pages, email sequences, social campaigns, and ads",
			EstimatedDurationMinutes: 45,
			RequiredInputs:           []string{"productName", "industry", "targetAudience"},
			Revenue:                  domain.RevenueRange{MinUSD: 15000, MaxUSD: 50000},
			TaskTemplates: []domain.TaskTemplate{
				{Name: "Market Research", Category: domain.CategoryCompetitorAnalysis, ExecutorHint: "perplexity"},
				{Name: "Content Generation", Category: domain.CategoryContentGeneration, ExecutorHint: "gpt4", DependsOn: []string{"Market Research"}},
				{Name: "Landing Page Creation", Category: domain.CategoryLandingPage, ExecutorHint: "webflow", DependsOn: []string{"Content Generation"}},
				{Name: "Email Sequence Setup", Category: domain.CategoryEmailSequence, ExecutorHint: "mailchimp", DependsOn: []string{"Content Generation"}},
				{Name: "Social Media Campaign", Category: domain.CategorySocialCampaign, ExecutorHint: "hootsuite", DependsOn: []string{"Content Generation"}},
				{Name: "Ad Campaign Setup", Category: domain.CategoryAdCampaign, ExecutorHint: "google_ads", DependsOn: []string{"Content Generation"}},
				{Name: "SEO Optimization", Category: domain.CategorySEO, ExecutorHint: "claude", DependsOn: []string{"Landing Page Creation"}},
				{Name: "Analytics Setup", Category: domain.CategoryAnalytics, ExecutorHint: "google_analytics", DependsOn: []string{"Landing Page Creation"}},
			},
		},
		{
			ID:                       "competitor-analysis",
			Name:                     "Competitor Conquest Campaign",
			Description:              "Analyze competitors and create counter-strategies",
			EstimatedDurationMinutes: 30,
			RequiredInputs:           []string{"productName", "competitors"},
			Revenue:                  domain.RevenueRange{MinUSD: 25000, MaxUSD: 75000},
			TaskTemplates: []domain.TaskTemplate{
				{Name: "Deep Competitor Analysis", Category: domain.CategoryCompetitorAnalysis, ExecutorHint: "perplexity", Critical: true},
				{Name: "Weakness Exploitation Strategy", Category: domain.CategoryContentGeneration, ExecutorHint: "claude", DependsOn: []string{"Deep Competitor Analysis"}},
				{Name: "Counter-Campaign Creation", Category: domain.CategoryAdCampaign, ExecutorHint: "google_ads", DependsOn: []string{"Weakness Exploitation Strategy"}},
			},
		},
		{
			ID:                       "event-marketing",
			Name:                     "Event Marketing Campaign",
			Description:              "Complete event promotion and management",
			EstimatedDurationMinutes: 35,
			RequiredInputs:           []string{"productName", "targetAudience"},
			Revenue:                  domain.RevenueRange{MinUSD: 5000, MaxUSD: 25000},
			TaskTemplates: []domain.TaskTemplate{
				{Name: "Event Landing Page", Category: domain.CategoryLandingPage, ExecutorHint: "webflow"},
				{Name: "Registration System", Category: domain.CategoryFulfillment, ExecutorHint: "eventbrite", DependsOn: []string{"Event Landing Page"}},
				{Name: "Promotional Campaign", Category: domain.CategorySocialCampaign, ExecutorHint: "hootsuite", DependsOn: []string{"Event Landing Page"}},
				{Name: "Email Reminders", Category: domain.CategoryEmailSequence, ExecutorHint: "mailchimp", DependsOn: []string{"Registration System"}},
			},
		},
		{
			ID:                       "customer-retention",
			Name:                     "Customer Retention Mastery",
			Description:              "Comprehensive retention strategy with predictive churn prevention",
			EstimatedDurationMinutes: 40,
			RequiredInputs:           []string{"productName"},
			Revenue:                  domain.RevenueRange{MinUSD: 20000, MaxUSD: 60000},
			TaskTemplates: []domain.TaskTemplate{
				{Name: "Predictive Churn Analysis", Category: domain.CategoryAnalytics, ExecutorHint: "gemini"},
				{Name: "Retention Strategy Framework", Category: domain.CategoryContentGeneration, ExecutorHint: "claude", DependsOn: []string{"Predictive Churn Analysis"}},
				{Name: "Loyalty Program Setup", Category: domain.CategoryFulfillment, ExecutorHint: "loyaltylion", DependsOn: []string{"Retention Strategy Framework"}},
				{Name: "Win-Back Campaigns", Category: domain.CategoryEmailSequence, ExecutorHint: "mailchimp", DependsOn: []string{"Retention Strategy Framework"}},
			},
		},
		{
			ID:                       "revenue-optimization",
			Name:                     "Revenue Optimization Engine",
			Description:              "AI-driven revenue optimization across all touchpoints and funnels",
			EstimatedDurationMinutes: 50,
			RequiredInputs:           []string{"productName", "industry"},
			Revenue:                  domain.RevenueRange{MinUSD: 30000, MaxUSD: 100000},
			TaskTemplates: []domain.TaskTemplate{
				{Name: "Comprehensive Revenue Audit", Category: domain.CategoryAnalytics, ExecutorHint: "gemini", Critical: true},
				{Name: "AI Pricing Optimization", Category: domain.CategoryContentGeneration, ExecutorHint: "claude", DependsOn: []string{"Comprehensive Revenue Audit"}},
				{Name: "Conversion Funnel Campaigns", Category: domain.CategoryAdCampaign, ExecutorHint: "google_ads", DependsOn: []string{"Comprehensive Revenue Audit"}},
				{Name: "Upsell Automation", Category: domain.CategoryEmailSequence, ExecutorHint: "mailchimp", DependsOn: []string{"AI Pricing Optimization"}},
			},
		},
	}
}
