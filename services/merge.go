package services

import (
	"strings"

	"ss-scraper/models"
)

// keySeparator joins dedup field values; it cannot appear in scraped text.
const keySeparator = "\x1f"

// Merge appends fresh to prior and drops every record whose dedup key was
// already seen, so the first-seen copy always wins: a previously stored
// record is kept over a re-scraped one even if its price or status changed.
// It returns the combined store and the number of fresh records that were
// not duplicates.
func Merge[T models.Record](prior, fresh []T, keys []string) ([]T, int) {
	seen := make(map[string]struct{}, len(prior)+len(fresh))
	merged := make([]T, 0, len(prior)+len(fresh))

	keep := func(r T) bool {
		k := DedupKey(r, keys)
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
		merged = append(merged, r)
		return true
	}

	for _, r := range prior {
		keep(r)
	}

	added := 0
	for _, r := range fresh {
		if keep(r) {
			added++
		}
	}
	return merged, added
}

// DedupKey renders the identity of r under the given key fields.
func DedupKey(r models.Record, keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = r.Field(k)
	}
	return strings.Join(parts, keySeparator)
}
