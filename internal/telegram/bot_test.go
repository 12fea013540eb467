package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"weekly-planner/internal/app"
	"weekly-planner/internal/meal"
	"weekly-planner/internal/planner"
	"weekly-planner/internal/shopping"
)

func samplePlanView() app.PlanView {
	return app.PlanView{
		WeekStart: "2026-10-19",
		Days: []planner.DayPlan{
			{Day: 0, DayName: "Segunda", MealType: meal.Breakfast, Meal: "Pão_de_queijo"},
			{Day: 0, DayName: "Segunda", MealType: meal.Lunch, Meal: "Frango Grelhado"},
			{Day: 1, DayName: "Terça", MealType: meal.Lunch},
		},
		ProteinSummary: "Frango, Ovos",
		ProteinOptions: []app.ProteinOption{
			{Tag: "frango", Label: "Frango", Active: true},
			{Tag: "porco", Label: "Porco"},
		},
		Warnings: []planner.Warning{{MealType: meal.Snack, Message: "Não temos opção de Lanche da Tarde com as proteínas selecionadas."}},
	}
}

func TestFormatPlanMarkdown(t *testing.T) {
	out := formatPlanMarkdown(samplePlanView())

	assert.Contains(t, out, "📅 *Cardápio da semana de 2026-10-19*")
	assert.Contains(t, out, "*Café da Manhã*\n• Segunda: Pão\\_de\\_queijo")
	assert.Contains(t, out, "• Segunda: Frango Grelhado")
	assert.Contains(t, out, "• Terça: —")
	assert.Contains(t, out, "*Proteínas Desejadas:* Frango, Ovos")
	assert.Contains(t, out, "⚠️ _Não temos opção de Lanche da Tarde")
}

func TestFormatShoppingListMarkdown(t *testing.T) {
	list := shopping.List{Sections: []shopping.Section{
		{Category: meal.Proteins, Label: "Proteínas", Lines: []shopping.Line{{Name: "Frango", Unit: "g", Quantity: 400}}},
		{Category: meal.Fruits, Label: "Frutas"},
	}}

	out := formatShoppingListMarkdown(list)

	assert.Contains(t, out, "🛒 *Lista de Compras*")
	assert.Contains(t, out, "*Proteínas*\n• Frango: 400 g")
	assert.Contains(t, out, "*Frutas*\n_vazio_")
}

func TestParseCallback(t *testing.T) {
	cb, err := parseCallback(swapData(meal.Lunch, 3))
	require.NoError(t, err)
	assert.Equal(t, callback{action: actionSwap, mealType: meal.Lunch, day: 3}, cb)

	cb, err = parseCallback(proteinData("frango"))
	require.NoError(t, err)
	assert.Equal(t, callback{action: actionProtein, tag: "frango"}, cb)

	for _, data := range []string{"", "swap|lunch", "swap|dinner|1", "swap|lunch|7", "swap|lunch|x", "prot|", "redo|x"} {
		_, err := parseCallback(data)
		assert.Error(t, err, data)
	}
	_, err = parseCallback("swap|lunch|9")
	assert.ErrorIs(t, err, planner.ErrInvalidDay)
}

func TestKeyboards(t *testing.T) {
	view := samplePlanView()

	prot := proteinKeyboard(view)
	require.Len(t, prot.InlineKeyboard, 2)
	assert.Equal(t, "✅ Frango", prot.InlineKeyboard[0][0].Text)
	assert.Equal(t, "prot|frango", *prot.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "⬜ Porco", prot.InlineKeyboard[1][0].Text)

	swap := swapKeyboard(view)
	require.Len(t, swap.InlineKeyboard, meal.DaysPerWeek)
	require.Len(t, swap.InlineKeyboard[1], len(meal.Types))
	assert.Equal(t, "🔄 Ter Almoço", swap.InlineKeyboard[1][1].Text)
	assert.Equal(t, "swap|lunch|1", *swap.InlineKeyboard[1][1].CallbackData)
	for _, row := range swap.InlineKeyboard {
		for _, btn := range row {
			assert.LessOrEqual(t, len(*btn.CallbackData), 64)
		}
	}
}

func TestIsAllowed(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := newBot(nil, nil, []int64{42}, zap.New(core))

	assert.True(t, b.isAllowed(&tgbotapi.User{ID: 42}))
	assert.False(t, b.isAllowed(&tgbotapi.User{ID: 7, UserName: "intruso"}))
	assert.False(t, b.isAllowed(nil))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "intruso", logs.All()[0].ContextMap()["username"])

	open := newBot(nil, nil, nil, zaptest.NewLogger(t))
	assert.False(t, open.isAllowed(&tgbotapi.User{ID: 42}))
}
