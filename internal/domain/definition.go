package domain

// TaskCategory selects which executor handles a task. The set is closed:
// adding a category means registering a new handler, not editing a dispatcher.
type TaskCategory string

const (
	CategoryContentGeneration  TaskCategory = "content_generation"
	CategoryLandingPage        TaskCategory = "landing_page_creation"
	CategoryEmailSequence      TaskCategory = "email_sequence_setup"
	CategorySocialCampaign     TaskCategory = "social_campaign_setup"
	CategoryCompetitorAnalysis TaskCategory = "competitor_analysis"
	CategoryAdCampaign         TaskCategory = "ad_campaign_setup"
	CategorySEO                TaskCategory = "seo_optimization"
	CategoryAnalytics          TaskCategory = "analytics_setup"
	CategoryFulfillment        TaskCategory = "generic_fulfillment"
)

// Categories lists every known task category.
func Categories() []TaskCategory {
	return []TaskCategory{
		CategoryContentGeneration,
		CategoryLandingPage,
		CategoryEmailSequence,
		CategorySocialCampaign,
		CategoryCompetitorAnalysis,
		CategoryAdCampaign,
		CategorySEO,
		CategoryAnalytics,
		CategoryFulfillment,
	}
}

// TaskTemplate is one step of a workflow definition.
type TaskTemplate struct {
	Name         string       `json:"name"`
	Category     TaskCategory `json:"category"`
	DependsOn    []string     `json:"depends_on,omitempty"`
	ExecutorHint string       `json:"executor_hint,omitempty"`
	// Critical tasks stop the execution when they fail. Non-critical
	// failures mark the execution FAILED but let remaining tasks run.
	Critical bool `json:"critical,omitempty"`
}

// RevenueRange is the advertised revenue potential of a workflow, used by the
// attribution estimator as its baseline.
type RevenueRange struct {
	MinUSD int `json:"min_usd"`
	MaxUSD int `json:"max_usd"`
}

// Midpoint returns the center of the range.
func (r RevenueRange) Midpoint() float64 {
	return float64(r.MinUSD+r.MaxUSD) / 2
}

// WorkflowDefinition is an immutable, hand-authored workflow template.
// Definitions are loaded once at startup and safe for concurrent reads.
type WorkflowDefinition struct {
	ID                       string         `json:"id"`
	Name                     string         `json:"name"`
	Description              string         `json:"description"`
	EstimatedDurationMinutes int            `json:"estimated_duration_minutes"`
	RequiredInputs           []string       `json:"required_inputs,omitempty"`
	Revenue                  RevenueRange   `json:"revenue"`
	TaskTemplates            []TaskTemplate `json:"task_templates"`
}
