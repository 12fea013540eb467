package shopping

import (
	"fmt"
	"math"
	"strconv"

	"weekly-planner/internal/meal"
)

// Line is one consolidated shopping-list row.
type Line struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
}

// DisplayQuantity is the quantity rounded to one decimal place.
func (l Line) DisplayQuantity() float64 {
	return math.Round(l.Quantity*10) / 10
}

// String renders the quantity and unit, e.g. "1.5 xícara".
func (l Line) String() string {
	return fmt.Sprintf("%s %s", strconv.FormatFloat(l.DisplayQuantity(), 'f', -1, 64), l.Unit)
}

// Section groups the lines of one category.
type Section struct {
	Category meal.Category `json:"category"`
	Label    string        `json:"label"`
	Lines    []Line        `json:"lines"`
}

// List is a shopping list partitioned by category. Sections always appear for
// every category, in display order, even when empty.
type List struct {
	Sections []Section `json:"sections"`
}

// Section returns the section for a category.
func (l List) Section(c meal.Category) Section {
	for _, s := range l.Sections {
		if s.Category == c {
			return s
		}
	}
	return Section{Category: c, Label: c.Label()}
}

// Find looks up the line for an ingredient name and unit in any section.
func (l List) Find(name, unit string) (Line, bool) {
	for _, s := range l.Sections {
		for _, ln := range s.Lines {
			if ln.Name == name && ln.Unit == unit {
				return ln, true
			}
		}
	}
	return Line{}, false
}

// Len returns the total number of lines.
func (l List) Len() int {
	n := 0
	for _, s := range l.Sections {
		n += len(s.Lines)
	}
	return n
}
