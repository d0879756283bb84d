// Package merge combines canonical records that share an identity key
// into one unified record per movie, with field-level precedence and
// provider provenance.
package merge

import (
	"sort"

	"reelmerge/internal/canonical"
	"reelmerge/internal/identity"
)

// Record is the unified cross-provider view of one movie. Ratings and
// financial leaves are resolved independently, so a single record can
// mix contributions from several providers.
type Record struct {
	MovieID     string               `json:"movie_id"`
	MovieTitle  string               `json:"movie_title"`
	ReleaseYear *int                 `json:"release_year,omitempty"`
	Ratings     canonical.Ratings    `json:"ratings"`
	Financials  canonical.Financials `json:"financials"`
	Providers   []string             `json:"providers"`
}

// Merge folds an identity group into one merged record. The caller must
// pass records in provider discovery order; that order is the tie-break
// for every first-wins rule and the function never re-sorts its input.
// Conflicting later values are silently discarded.
func Merge(group []canonical.Record) Record {
	if len(group) == 0 {
		return Record{}
	}

	out := Record{MovieTitle: group[0].MovieTitle}
	seen := make(map[string]struct{}, len(group))

	for _, rec := range group {
		if out.ReleaseYear == nil && rec.ReleaseYear != nil {
			out.ReleaseYear = canonical.Int(*rec.ReleaseYear)
		}

		takeFloat(&out.Ratings.Critic.Score, rec.Ratings.Critic.Score)
		takeFloat(&out.Ratings.Critic.TopScore, rec.Ratings.Critic.TopScore)
		takeInt64(&out.Ratings.Critic.TotalRatings, rec.Ratings.Critic.TotalRatings)
		takeFloat(&out.Ratings.Audience.Score, rec.Ratings.Audience.Score)
		takeInt64(&out.Ratings.Audience.TotalRatings, rec.Ratings.Audience.TotalRatings)

		takeInt64(&out.Financials.DomesticBoxOfficeUSD, rec.Financials.DomesticBoxOfficeUSD)
		takeInt64(&out.Financials.WorldwideBoxOfficeUSD, rec.Financials.WorldwideBoxOfficeUSD)
		takeInt64(&out.Financials.ProductionBudgetUSD, rec.Financials.ProductionBudgetUSD)
		takeInt64(&out.Financials.MarketingSpendUSD, rec.Financials.MarketingSpendUSD)

		// A provider counts as provenance by being in the group, even
		// when every one of its fields lost to an earlier provider.
		if _, ok := seen[rec.Provider]; !ok && rec.Provider != "" {
			seen[rec.Provider] = struct{}{}
			out.Providers = append(out.Providers, rec.Provider)
		}
	}

	out.MovieID = identity.MovieID(out.MovieTitle, out.ReleaseYear)
	return out
}

// MergeAll groups an ordered canonical stream by identity key and merges
// each group. The result is sorted by case-insensitive title with movie
// id as tie-break, giving a deterministic, diff-friendly artifact.
func MergeAll(records []canonical.Record) []Record {
	groups := make(map[string][]canonical.Record)
	order := make([]string, 0, len(records))
	for _, rec := range records {
		key := identity.Key(rec)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rec)
	}

	merged := make([]Record, 0, len(order))
	for _, key := range order {
		merged = append(merged, Merge(groups[key]))
	}

	sort.Slice(merged, func(i, j int) bool {
		a := identity.NormalizeTitle(merged[i].MovieTitle)
		b := identity.NormalizeTitle(merged[j].MovieTitle)
		if a != b {
			return a < b
		}
		return merged[i].MovieID < merged[j].MovieID
	})
	return merged
}

// GroupSizes reports the size of each identity group in an ordered
// canonical stream, keyed by identity key. Used for run summaries.
func GroupSizes(records []canonical.Record) map[string]int {
	sizes := make(map[string]int)
	for _, rec := range records {
		sizes[identity.Key(rec)]++
	}
	return sizes
}

func takeFloat(dst **float64, src *float64) {
	if *dst == nil && src != nil {
		*dst = canonical.Float(*src)
	}
}

func takeInt64(dst **int64, src *int64) {
	if *dst == nil && src != nil {
		*dst = canonical.Int64(*src)
	}
}
