// Package aggregate computes analytics breakdowns in memory from a capped
// sample of raw report rows. These are the fallback-path computations: when
// the precomputed SQL functions are unavailable, every figure here is a
// statistic over the sampled window, not the true population statistic.
package aggregate

import (
	"sort"

	"github.com/phenomwatch/analytics/internal/domain"
)

// CountryLimit is the maximum number of entries in the country breakdown.
const CountryLimit = 15

// CategoryBreakdown groups the sample by category, descending by count.
func CategoryBreakdown(rows []domain.ReportRecord) []domain.Bucket {
	counts := make(map[string]int64)
	for i := range rows {
		counts[rows[i].Category]++
	}
	return sortedBuckets(counts)
}

// CountryBreakdown groups the sample by country, descending by count.
// Records without a country are excluded; the result is truncated to the
// top CountryLimit entries.
func CountryBreakdown(rows []domain.ReportRecord) []domain.Bucket {
	counts := make(map[string]int64)
	for i := range rows {
		if rows[i].Country == nil || *rows[i].Country == "" {
			continue
		}
		counts[*rows[i].Country]++
	}

	buckets := sortedBuckets(counts)
	if len(buckets) > CountryLimit {
		buckets = buckets[:CountryLimit]
	}
	return buckets
}

// CredibilityBreakdown groups the sample by credibility level, ordered by
// the fixed severity ladder rather than by count. Zero-count levels are
// omitted.
func CredibilityBreakdown(rows []domain.ReportRecord) []domain.Bucket {
	counts := make(map[domain.Credibility]int64)
	for i := range rows {
		counts[rows[i].Credibility]++
	}

	buckets := make([]domain.Bucket, 0, len(counts))
	for _, level := range domain.CredibilityLadder() {
		if counts[level] == 0 {
			continue
		}
		buckets = append(buckets, domain.Bucket{Key: string(level), Count: counts[level]})
	}
	return buckets
}

// SourceBreakdown groups the sample by source type, descending by count.
func SourceBreakdown(rows []domain.ReportRecord) []domain.Bucket {
	counts := make(map[string]int64)
	for i := range rows {
		counts[rows[i].SourceType]++
	}
	return sortedBuckets(counts)
}

// sortedBuckets converts a count map to buckets sorted descending by count,
// with key order as a deterministic tie-break.
func sortedBuckets(counts map[string]int64) []domain.Bucket {
	buckets := make([]domain.Bucket, 0, len(counts))
	for key, count := range counts {
		buckets = append(buckets, domain.Bucket{Key: key, Count: count})
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})

	return buckets
}
