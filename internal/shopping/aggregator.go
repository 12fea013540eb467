package shopping

import (
	"strings"

	"weekly-planner/internal/meal"
)

const (
	fallbackQuantity = 1
	fallbackUnit     = "x"
)

// UnitSource resolves default quantities for ingredients listed by name only.
type UnitSource interface {
	DefaultUnit(name string) (meal.DefaultUnit, bool)
}

// Aggregator builds shopping lists out of selected meal options.
type Aggregator struct {
	classifier *Classifier
	units      UnitSource
}

// NewAggregator creates an Aggregator from a catalog's keyword table and
// default units.
func NewAggregator(catalog *meal.Catalog) *Aggregator {
	return &Aggregator{
		classifier: NewClassifier(catalog.Keywords()),
		units:      catalog,
	}
}

type lineKey struct {
	name string
	unit string
}

// Aggregate sums the ingredients of every option by (name, unit) and splits
// the totals into category sections. Options may repeat; each occurrence
// counts. The returned list is always built from scratch.
func (a *Aggregator) Aggregate(options []meal.Option) List {
	totals := make(map[lineKey]*Line)
	var order []lineKey

	for _, opt := range options {
		for _, ing := range opt.Ingredients {
			name, qty, unit := a.resolve(ing)
			if name == "" {
				continue
			}
			key := lineKey{name: name, unit: unit}
			line, ok := totals[key]
			if !ok {
				line = &Line{Name: name, Unit: unit}
				totals[key] = line
				order = append(order, key)
			}
			line.Quantity += qty
		}
	}

	byCategory := make(map[meal.Category][]Line)
	for _, key := range order {
		line := *totals[key]
		cat := a.classifier.Classify(line.Name)
		byCategory[cat] = append(byCategory[cat], line)
	}

	list := List{Sections: make([]Section, 0, len(meal.Categories))}
	for _, cat := range meal.Categories {
		list.Sections = append(list.Sections, Section{
			Category: cat,
			Label:    cat.Label(),
			Lines:    byCategory[cat],
		})
	}
	return list
}

// Classify exposes the category of a single ingredient name.
func (a *Aggregator) Classify(name string) meal.Category {
	return a.classifier.Classify(name)
}

func (a *Aggregator) resolve(ing meal.Ingredient) (string, float64, string) {
	name := strings.TrimSpace(ing.Name)
	qty, unit := float64(fallbackQuantity), fallbackUnit

	if ing.Structured {
		if ing.Quantity != 0 {
			qty = ing.Quantity
		}
		if ing.Unit != "" {
			unit = ing.Unit
		}
		return name, qty, unit
	}

	if d, ok := a.units.DefaultUnit(name); ok {
		if d.Quantity != 0 {
			qty = d.Quantity
		}
		if d.Unit != "" {
			unit = d.Unit
		}
	}
	return name, qty, unit
}
