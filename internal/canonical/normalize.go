package canonical

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// NormalizationError reports a raw row that cannot become a canonical
// record. It is only produced for a missing or empty title; every other
// defect degrades to an omitted field.
type NormalizationError struct {
	Provider string
	Field    string
	Reason   string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %s row: field %s %s", e.Provider, e.Field, e.Reason)
}

// alias names one accepted raw column for a canonical field. Scale, when
// non-zero, divides the raw value before assignment (percentage columns
// land on the 0-10 score scale).
type alias struct {
	name  string
	scale float64
}

var (
	titleAliases = []string{"movie_title", "title", "name", "film_name"}
	yearAliases  = []string{"release_year", "year", "year_of_release"}

	criticScoreAliases = []alias{
		{name: "critic_score_percentage", scale: 10},
		{name: "critic_score"},
	}
	topCriticScoreAliases = []alias{
		{name: "top_critic_score"},
	}
	totalCriticAliases = []alias{
		{name: "total_critic_reviews_counted"},
		{name: "total_critic_ratings"},
	}
	audienceScoreAliases = []alias{
		{name: "audience_average_score"},
		{name: "audience_avg_score"},
	}
	totalAudienceAliases = []alias{
		{name: "total_audience_ratings"},
	}
	domesticGrossAliases = []alias{
		{name: "domestic_box_office_gross"},
		{name: "domestic_box_office_usd"},
	}
	worldwideGrossAliases = []alias{
		{name: "box_office_gross_usd"},
		{name: "worldwide_box_office_usd"},
	}
	productionBudgetAliases = []alias{
		{name: "production_budget_usd"},
		{name: "production_budget"},
	}
	marketingSpendAliases = []alias{
		{name: "marketing_spend_usd"},
		{name: "marketing_spend"},
	}
)

// grossOverride redirects the ambiguous box_office_gross_usd column for
// providers whose feed labels domestic gross with the generic name.
// Matching is by substring on the provider id so dated feed variants
// (provider3_domestic_2024) keep working.
var grossOverrides = []struct {
	providerContains string
}{
	{providerContains: "provider3_domestic"},
}

// Normalize maps one raw provider row onto the canonical schema. The
// fields map comes straight from the extractor (CSV header-keyed strings
// or decoded JSON values); matching against the alias table is
// case-insensitive and unrecognized columns are dropped. It fails only
// when no usable title is present.
func Normalize(fields map[string]any, provider string) (Record, error) {
	lookup := newFieldLookup(fields)

	title := strings.TrimSpace(lookup.firstString(titleAliases))
	if title == "" {
		return Record{}, &NormalizationError{Provider: provider, Field: "movie_title", Reason: "missing or empty"}
	}

	rec := Record{
		MovieTitle: title,
		Provider:   provider,
	}

	for _, name := range yearAliases {
		if raw, ok := lookup.value(name); ok {
			if year, ok := parseYear(raw); ok {
				rec.ReleaseYear = &year
				break
			}
		}
	}

	rec.Ratings.Critic.Score = lookup.floatField(criticScoreAliases)
	rec.Ratings.Critic.TopScore = lookup.floatField(topCriticScoreAliases)
	rec.Ratings.Critic.TotalRatings = lookup.intField(totalCriticAliases)
	rec.Ratings.Audience.Score = lookup.floatField(audienceScoreAliases)
	rec.Ratings.Audience.TotalRatings = lookup.intField(totalAudienceAliases)

	domestic := domesticGrossAliases
	worldwide := worldwideGrossAliases
	if grossIsDomestic(provider) {
		domestic = append(domestic[:len(domestic):len(domestic)], alias{name: "box_office_gross_usd"})
		worldwide = withoutAlias(worldwide, "box_office_gross_usd")
	}
	rec.Financials.DomesticBoxOfficeUSD = lookup.intField(domestic)
	rec.Financials.WorldwideBoxOfficeUSD = lookup.intField(worldwide)
	rec.Financials.ProductionBudgetUSD = lookup.intField(productionBudgetAliases)
	rec.Financials.MarketingSpendUSD = lookup.intField(marketingSpendAliases)

	return rec, nil
}

func withoutAlias(aliases []alias, name string) []alias {
	out := make([]alias, 0, len(aliases))
	for _, a := range aliases {
		if a.name == name {
			continue
		}
		out = append(out, a)
	}
	return out
}

func grossIsDomestic(provider string) bool {
	lowered := strings.ToLower(provider)
	for _, override := range grossOverrides {
		if strings.Contains(lowered, override.providerContains) {
			return true
		}
	}
	return false
}

// fieldLookup indexes a raw row by lowercased column name.
type fieldLookup struct {
	fields map[string]any
}

func newFieldLookup(fields map[string]any) fieldLookup {
	lowered := make(map[string]any, len(fields))
	for key, value := range fields {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if _, exists := lowered[key]; !exists {
			lowered[key] = value
		}
	}
	return fieldLookup{fields: lowered}
}

func (l fieldLookup) value(name string) (any, bool) {
	v, ok := l.fields[strings.ToLower(name)]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

func (l fieldLookup) firstString(names []string) string {
	for _, name := range names {
		if raw, ok := l.value(name); ok {
			if s, ok := toString(raw); ok {
				return s
			}
		}
	}
	return ""
}

// floatField resolves the first alias whose value coerces to a float.
// A present but unparseable value omits the field rather than failing
// the row.
func (l fieldLookup) floatField(aliases []alias) *float64 {
	for _, a := range aliases {
		raw, ok := l.value(a.name)
		if !ok {
			continue
		}
		v, ok := toFloat(raw)
		if !ok {
			continue
		}
		if a.scale != 0 {
			v /= a.scale
		}
		return &v
	}
	return nil
}

func (l fieldLookup) intField(aliases []alias) *int64 {
	for _, a := range aliases {
		raw, ok := l.value(a.name)
		if !ok {
			continue
		}
		if v, ok := toInt64(raw); ok {
			return &v
		}
	}
	return nil
}

func toString(v any) (string, bool) {
	switch value := v.(type) {
	case string:
		return value, true
	case fmt.Stringer:
		return value.String(), true
	default:
		return "", false
	}
}

func toFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func toInt64(v any) (int64, bool) {
	switch value := v.(type) {
	case int:
		return int64(value), true
	case int64:
		return value, true
	case float64:
		if value != math.Trunc(value) {
			return 0, false
		}
		return int64(value), true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

var yearPattern = regexp.MustCompile(`(?:^|[^0-9])([0-9]{4})(?:[^0-9]|$)`)

// parseYear accepts a four-digit integer or a string containing one.
func parseYear(v any) (int, bool) {
	switch value := v.(type) {
	case int:
		if value >= 1000 && value <= 9999 {
			return value, true
		}
	case int64:
		if value >= 1000 && value <= 9999 {
			return int(value), true
		}
	case float64:
		if value == math.Trunc(value) && value >= 1000 && value <= 9999 {
			return int(value), true
		}
	case string:
		match := yearPattern.FindStringSubmatch(strings.TrimSpace(value))
		if match == nil {
			return 0, false
		}
		year, err := strconv.Atoi(match[1])
		if err != nil {
			return 0, false
		}
		return year, true
	}
	return 0, false
}
