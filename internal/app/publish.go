package app

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"weekly-planner/internal/ghost"
	"weekly-planner/internal/meal"
	"weekly-planner/internal/planner"
	"weekly-planner/internal/shopping"
)

var postTemplate = template.Must(template.New("post").Parse(`
<h2>Cardápio</h2>
{{- range .Meals}}
<h3>{{.Label}}</h3>
<ul>
{{- range .Days}}
<li><strong>{{.DayName}}</strong>: {{if .Meal}}{{.Meal}}{{else}}—{{end}}</li>
{{- end}}
</ul>
{{- end}}
<p><strong>Proteínas Desejadas:</strong> {{.ProteinSummary}}</p>
<h2>Lista de Compras</h2>
{{- range .Shopping.Sections}}
<h3>{{.Label}}</h3>
<ul>
{{- range .Lines}}
<li>{{.Name}}: {{.String}}</li>
{{- else}}
<li>—</li>
{{- end}}
</ul>
{{- end}}
`))

type postMeal struct {
	Label string
	Days  []planner.DayPlan
}

type postData struct {
	Meals          []postMeal
	ProteinSummary string
	Shopping       shopping.List
}

// RenderPlanHTML renders a plan and its shopping list as an HTML fragment.
func RenderPlanHTML(view PlanView, list shopping.List) (string, error) {
	data := postData{ProteinSummary: view.ProteinSummary, Shopping: list}
	for _, t := range meal.Types {
		pm := postMeal{Label: t.Label()}
		for _, d := range view.Days {
			if d.MealType == t {
				pm.Days = append(pm.Days, d)
			}
		}
		data.Meals = append(data.Meals, pm)
	}

	var buf bytes.Buffer
	if err := postTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render plan: %w", err)
	}
	return buf.String(), nil
}

// Publish posts the user's current plan and shopping list to Ghost as a draft.
func (a *App) Publish(ctx context.Context, userID string) (*ghost.Post, error) {
	if a.ghostClient == nil {
		return nil, ErrPublishingDisabled
	}
	start := time.Now()

	a.mu.Lock()
	plan, err := a.loadOrCreate(ctx, userID)
	if err != nil {
		a.mu.Unlock()
		return nil, err
	}
	view := a.view(userID, plan, nil)
	list := a.mealPlanner.ShoppingList(plan)
	a.mu.Unlock()

	html, err := RenderPlanHTML(view, list)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Cardápio da semana de %s", plan.WeekStart.Format("02/01/2006"))
	post, err := a.ghostClient.CreatePost(ctx, title, html, false)
	if err != nil {
		a.track(ctx, "publish", userID, nil, err, start)
		return nil, fmt.Errorf("failed to publish plan: %w", err)
	}
	a.track(ctx, "publish", userID, nil, nil, start)
	return post, nil
}
