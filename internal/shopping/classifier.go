package shopping

import (
	"strings"

	"weekly-planner/internal/meal"
)

// Classifier assigns shopping-list categories to ingredient names by ordered
// substring matching over a keyword table.
type Classifier struct {
	table meal.KeywordTable
}

// NewClassifier prepares a lower-cased copy of the keyword table. Empty
// keywords and categories outside the fixed enumeration are dropped.
func NewClassifier(table meal.KeywordTable) *Classifier {
	prepared := make(meal.KeywordTable, 0, len(table))
	for _, ck := range table {
		if !ck.Category.Valid() {
			continue
		}
		keywords := make([]string, 0, len(ck.Keywords))
		for _, k := range ck.Keywords {
			if k == "" {
				continue
			}
			keywords = append(keywords, strings.ToLower(k))
		}
		prepared = append(prepared, meal.CategoryKeywords{Category: ck.Category, Keywords: keywords})
	}
	return &Classifier{table: prepared}
}

// Classify returns the first category, in table order, having a keyword
// contained in name. Names matching nothing fall into meal.Other.
func (c *Classifier) Classify(name string) meal.Category {
	low := strings.ToLower(name)
	for _, ck := range c.table {
		for _, k := range ck.Keywords {
			if strings.Contains(low, k) {
				return ck.Category
			}
		}
	}
	return meal.Other
}
