// Package dedup collapses a combined set of email items to one canonical
// item per identity key.
package dedup

import (
	"github.com/mailsmart/mailsmart/internal/core/domain"
)

// ByKey returns one item per identity key. When duplicates exist, the last
// occurrence in input order wins, matching mapping-overwrite semantics.
// Output order follows the first occurrence of each key, which keeps the
// result deterministic for a given input.
//
// ByKey is idempotent: applying it twice yields the same result as once.
func ByKey(items []domain.Item) []domain.Item {
	if len(items) == 0 {
		return nil
	}

	position := make(map[string]int, len(items))
	result := make([]domain.Item, 0, len(items))

	for _, item := range items {
		key := item.Key()

		if idx, seen := position[key]; seen {
			result[idx] = item
			continue
		}

		position[key] = len(result)
		result = append(result, item)
	}

	return result
}
