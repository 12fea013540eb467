package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"weekly-planner/internal/app"
	"weekly-planner/internal/config"
	"weekly-planner/internal/fuel"
	"weekly-planner/internal/meal"
)

func newTestCLI(t *testing.T) *cli {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	c := &cli{
		logger: zaptest.NewLogger(t),
		open: func(ctx context.Context, logger *zap.Logger) (*app.Services, error) {
			cfg := config.Default()
			cfg.DatabasePath = dbPath
			cfg.Seed = 42
			return app.Setup(ctx, cfg, logger)
		},
	}
	t.Cleanup(func() {
		if c.services != nil {
			c.services.Close()
		}
	})
	return c
}

func execute(t *testing.T, c *cli, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(c)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPlanCommands(t *testing.T) {
	c := newTestCLI(t)

	out, err := execute(t, c, "plan", "--user", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, "Semana de ")
	for _, mt := range meal.Types {
		assert.Contains(t, out, mt.Label())
	}
	assert.Contains(t, out, "Proteínas Desejadas: Selecione as proteínas desejadas")

	out, err = execute(t, c, "assign", "lunch", "1", "Frango Grelhado com Arroz Integral", "--user", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, "Segunda  Frango Grelhado com Arroz Integral")

	out, err = execute(t, c, "protein", "frango", "--on", "--user", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, "Proteínas Desejadas: ")
	assert.NotContains(t, out, "Selecione as proteínas desejadas")

	out, err = execute(t, c, "shopping-list", "--user", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, meal.Proteins.Label())
	assert.Contains(t, out, "Peito de frango")
}

func TestSlotValidation(t *testing.T) {
	c := newTestCLI(t)

	_, err := execute(t, c, "swap", "dinner", "1")
	assert.ErrorContains(t, err, "unknown meal type")

	_, err = execute(t, c, "swap", "lunch", "8")
	assert.ErrorContains(t, err, "invalid day")

	_, err = execute(t, c, "assign", "lunch", "1", "Não existe")
	assert.ErrorContains(t, err, "does not belong")

	_, err = execute(t, c, "protein", "frango", "--on", "--off")
	assert.Error(t, err)

	_, err = execute(t, c, "publish")
	assert.ErrorIs(t, err, app.ErrPublishingDisabled)
}

func TestParseSlot(t *testing.T) {
	mt, day, err := parseSlot("Snack", "7")
	require.NoError(t, err)
	assert.Equal(t, meal.Snack, mt)
	assert.Equal(t, 6, day)

	_, _, err = parseSlot("snack", "0")
	assert.Error(t, err)
}

func TestParseQuote(t *testing.T) {
	q, err := parseQuote("etanol=R$ 3,59@8,5")
	require.NoError(t, err)
	assert.Equal(t, fuel.Ethanol, q.Fuel)
	assert.InDelta(t, 3.59, q.Price, 1e-9)
	assert.InDelta(t, 8.5, q.Consumption, 1e-9)

	for _, s := range []string{"etanol", "etanol=3,59", "querosene=1@1"} {
		_, err := parseQuote(s)
		assert.Error(t, err, s)
	}
}

func TestFuelAndHistoryCommands(t *testing.T) {
	c := newTestCLI(t)

	out, err := execute(t, c, "fuel", "compare", "--distance", "100",
		"--quote", "gasolina=5,79@12", "--quote", "etanol=3,59@8,5")
	require.NoError(t, err)
	assert.Contains(t, out, "Melhor opção: Etanol")
	assert.Contains(t, out, "Etanol compensa")

	out, err = execute(t, c, "fuel", "trip", "--distance", "150", "--consumption", "12",
		"--price", "6", "--round-trip", "--passengers", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Custo: R$ 150,00")
	assert.Contains(t, out, "Por pessoa: R$ 50,00")

	out, err = execute(t, c, "fuel", "economy", "--distance", "420", "--liters", "35", "--price", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Consumo: 12,00 km/l")

	out, err = execute(t, c, "history")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Economia")
	assert.Contains(t, lines[2], "Comparação")

	csvPath := filepath.Join(t.TempDir(), "historico.csv")
	out, err = execute(t, c, "history", "export", "--out", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote ")
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), strings.Join(fuel.HistoryHeader, ",")))

	_, err = execute(t, c, "history", "export", "--format", "pdf")
	assert.ErrorContains(t, err, "unknown format")

	out, err = execute(t, c, "history", "import", csvPath, "--user", "bia")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 entries")

	_, err = execute(t, c, "history", "clear")
	require.NoError(t, err)
	out, err = execute(t, c, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Nenhum cálculo realizado ainda")

	out, err = execute(t, c, "metrics-cleanup", "--days", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "old metric records")
}
