// Package budget selects the highest-priority subset of context fragments
// that fits under a token ceiling. Selection is greedy by ascending priority:
// an item that does not fit is skipped permanently and never revisited, but
// later (smaller) items may still be taken.
package budget

import "sort"

// Item is one prioritized context fragment. Lower priority is more
// important. Items are consumed once and never mutated.
type Item struct {
	Key      string
	Content  string
	Priority int
}

// Selection is the allocator's outcome.
type Selection struct {
	// Items holds the selected fragments in priority order.
	Items []Item
	// UsedTokens is the estimated cost of the selected fragments.
	UsedTokens int
	// Budget echoes the ceiling the selection was made under.
	Budget int
	// SkippedKeys lists items rejected for space, in consideration order.
	SkippedKeys []string
}

// EstimateTokens approximates the token cost of s at four bytes per token,
// rounding up. A rough estimate is sufficient: the ceiling exists to bound
// request size, not to bill exactly.
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	return (len(s) + 3) / 4
}

// Allocate picks items under maxTokens. The input slice is not modified;
// equal priorities keep their given order.
func Allocate(items []Item, maxTokens int) Selection {
	ordered := make([]Item, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	sel := Selection{Budget: maxTokens}
	for _, it := range ordered {
		cost := EstimateTokens(it.Content)
		if sel.UsedTokens+cost > maxTokens {
			sel.SkippedKeys = append(sel.SkippedKeys, it.Key)
			continue
		}
		sel.Items = append(sel.Items, it)
		sel.UsedTokens += cost
	}
	return sel
}
