package canonical

// CriticRatings holds aggregated critic review metrics on a 0-10 scale.
type CriticRatings struct {
	Score        *float64 `json:"score,omitempty"`
	TopScore     *float64 `json:"top_score,omitempty"`
	TotalRatings *int64   `json:"total_ratings,omitempty"`
}

// AudienceRatings holds aggregated audience review metrics on a 0-10 scale.
type AudienceRatings struct {
	Score        *float64 `json:"score,omitempty"`
	TotalRatings *int64   `json:"total_ratings,omitempty"`
}

// Ratings groups critic and audience metrics.
type Ratings struct {
	Critic   CriticRatings   `json:"critic"`
	Audience AudienceRatings `json:"audience"`
}

// Financials holds box office and spend figures in whole US dollars.
type Financials struct {
	DomesticBoxOfficeUSD  *int64 `json:"domestic_box_office_usd,omitempty"`
	WorldwideBoxOfficeUSD *int64 `json:"worldwide_box_office_usd,omitempty"`
	ProductionBudgetUSD   *int64 `json:"production_budget_usd,omitempty"`
	MarketingSpendUSD     *int64 `json:"marketing_spend_usd,omitempty"`
}

// Record is one provider row normalized into the shared schema. Optional
// fields are pointers; nil means the provider did not supply a usable
// value, never a placeholder.
type Record struct {
	MovieTitle  string     `json:"movie_title"`
	ReleaseYear *int       `json:"release_year,omitempty"`
	Ratings     Ratings    `json:"ratings"`
	Financials  Financials `json:"financials"`
	Provider    string     `json:"provider"`
}

// Float returns a pointer to v. Convenience for building records in tests
// and fixtures.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }
