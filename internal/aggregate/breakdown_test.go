//nolint:testpackage // Testing internal helpers requires same package access
package aggregate

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenomwatch/analytics/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestCategoryBreakdown_SortsDescendingWithKeyTieBreak(t *testing.T) {
	rows := []domain.ReportRecord{
		{Category: "cryptids"},
		{Category: "sighting"},
		{Category: "sighting"},
		{Category: "hauntings"},
	}

	buckets := CategoryBreakdown(rows)

	require.Len(t, buckets, 3)
	assert.Equal(t, domain.Bucket{Key: "sighting", Count: 2}, buckets[0])
	// Tied counts fall back to key order.
	assert.Equal(t, "cryptids", buckets[1].Key)
	assert.Equal(t, "hauntings", buckets[2].Key)
}

func TestCountryBreakdown_ExcludesMissingAndTruncates(t *testing.T) {
	var rows []domain.ReportRecord

	// 17 distinct countries, plus records with no country at all.
	for i := range 17 {
		country := "C" + strconv.Itoa(i)
		for range i + 1 {
			rows = append(rows, domain.ReportRecord{Country: strPtr(country)})
		}
	}
	rows = append(rows,
		domain.ReportRecord{Country: nil},
		domain.ReportRecord{Country: strPtr("")},
	)

	buckets := CountryBreakdown(rows)

	require.Len(t, buckets, CountryLimit)
	assert.Equal(t, "C16", buckets[0].Key)
	assert.Equal(t, int64(17), buckets[0].Count)

	for _, bucket := range buckets {
		assert.NotEmpty(t, bucket.Key)
	}
}

func TestCredibilityBreakdown_LadderOrderOmitsZeros(t *testing.T) {
	rows := []domain.ReportRecord{
		{Credibility: domain.CredibilityUnverified},
		{Credibility: domain.CredibilityConfirmed},
		{Credibility: domain.CredibilityUnverified},
		{Credibility: domain.CredibilityMedium},
	}

	buckets := CredibilityBreakdown(rows)

	require.Len(t, buckets, 3)
	assert.Equal(t, "confirmed", buckets[0].Key)
	assert.Equal(t, "medium", buckets[1].Key)
	assert.Equal(t, "unverified", buckets[2].Key)
	assert.Equal(t, int64(2), buckets[2].Count)
}

func TestSourceBreakdown(t *testing.T) {
	rows := []domain.ReportRecord{
		{SourceType: "web"},
		{SourceType: "mobile"},
		{SourceType: "web"},
	}

	buckets := SourceBreakdown(rows)

	require.Len(t, buckets, 2)
	assert.Equal(t, domain.Bucket{Key: "web", Count: 2}, buckets[0])
}
