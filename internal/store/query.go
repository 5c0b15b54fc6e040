package store

import (
	"sort"
	"strings"
	"time"

	"github.com/erazemk/bestbefore/internal/expiry"
	"github.com/erazemk/bestbefore/internal/model"
)

// Search returns items matching query and category, most urgent first.
// An empty query matches everything; query matches case-insensitively against
// name, description and category. An empty category matches every category.
func Search(items []model.Item, query, category string, now time.Time) []model.Item {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if category != "" && it.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(it.Name), q) &&
			!strings.Contains(strings.ToLower(it.Description), q) &&
			!strings.Contains(strings.ToLower(it.Category), q) {
			continue
		}
		out = append(out, it)
	}

	expiry.SortByUrgency(out, now)
	return out
}

// Categories returns the sorted unique non-blank categories.
func Categories(items []model.Item) []string {
	seen := make(map[string]bool)
	cats := []string{}
	for _, it := range items {
		if strings.TrimSpace(it.Category) == "" || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		cats = append(cats, it.Category)
	}
	sort.Strings(cats)
	return cats
}
