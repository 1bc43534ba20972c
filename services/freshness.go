package services

import (
	"database/sql"
	"slices"
	"time"

	"ss-scraper/models"
)

// FreshWindow is how far back an extraction may lie for a record to count
// as a new offer.
const FreshWindow = 20 * time.Hour

// SelectFresh returns the records extracted within FreshWindow of now that
// pass v's relevance predicate, sorted ascending by v's sort key (missing
// keys last) and ranked from 1.
func SelectFresh[T models.Record](store []T, v Vertical[T], now time.Time) []models.Ranked[T] {
	cutoff := now.Add(-FreshWindow)

	var picked []T
	for _, r := range store {
		if r.ExtractionTime().Before(cutoff) {
			continue
		}
		if v.Relevant != nil && !v.Relevant(r) {
			continue
		}
		picked = append(picked, r)
	}

	slices.SortStableFunc(picked, func(a, b T) int {
		return compareNull(v.SortKey(a), v.SortKey(b))
	})

	ranked := make([]models.Ranked[T], len(picked))
	for i, r := range picked {
		ranked[i] = models.Ranked[T]{Rank: i + 1, Record: r}
	}
	return ranked
}

func compareNull(a, b sql.NullFloat64) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return 1
	case !b.Valid:
		return -1
	case a.Float64 < b.Float64:
		return -1
	case a.Float64 > b.Float64:
		return 1
	default:
		return 0
	}
}
