package domain

// ChannelAttribution is one channel's share of the estimated revenue.
// Contribution is a percentage weight; weights across a breakdown sum to 100.
type ChannelAttribution struct {
	Name         string `json:"name"`
	Contribution int    `json:"contribution"`
	RevenueUSD   int    `json:"revenue_usd"`
}

// Attribution is the post-hoc revenue estimate attached to a completed
// execution. It is a heuristic, not a measurement.
type Attribution struct {
	EstimatedRevenueUSD int                  `json:"estimated_revenue_usd"`
	Confidence          int                  `json:"confidence"`
	Channels            []ChannelAttribution `json:"channels"`
}
