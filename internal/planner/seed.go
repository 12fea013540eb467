package planner

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"weekly-planner/internal/meal"
)

// SeedFromHTML builds a plan from a rendered planner page. Each
// ".meal-section[data-meal-type]" holds one ".day-card" per day whose
// ".day-meal" text names the displayed meal. The first eligible option whose
// name contains that text (case-insensitively) is assigned; otherwise a random
// eligible option is drawn. Slots missing from the page are filled at random.
func (p *Planner) SeedFromHTML(r io.Reader, weekStart time.Time, filter ProteinFilter) (Plan, []Warning, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Plan{}, nil, fmt.Errorf("failed to parse planner page: %w", err)
	}

	plan := newPlan(weekStart, filter)
	doc.Find(".meal-section[data-meal-type]").Each(func(_ int, section *goquery.Selection) {
		t := meal.Type(strings.TrimSpace(section.AttrOr("data-meal-type", "")))
		if !t.Valid() {
			return
		}
		pool := p.Eligible(t, filter)
		if len(pool) == 0 {
			return
		}
		section.Find(".day-card").Each(func(day int, card *goquery.Selection) {
			if day >= meal.DaysPerWeek {
				return
			}
			displayed := strings.TrimSpace(card.Find(".day-meal").First().Text())
			opt, ok := findByDisplayedName(displayed, pool)
			if !ok {
				opt = p.choose(pool)
			}
			plan.set(t, day, opt)
		})
	})

	seeded, warnings := p.Revalidate(plan)
	return seeded, warnings, nil
}

func findByDisplayedName(displayed string, pool []meal.Option) (meal.Option, bool) {
	if displayed == "" {
		return meal.Option{}, false
	}
	needle := strings.ToLower(displayed)
	for _, o := range pool {
		if strings.Contains(strings.ToLower(o.Name), needle) {
			return o, true
		}
	}
	return meal.Option{}, false
}
