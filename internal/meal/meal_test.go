package meal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientJSON(t *testing.T) {
	t.Run("BareName", func(t *testing.T) {
		var ing Ingredient
		require.NoError(t, json.Unmarshal([]byte(`"  Ovo "`), &ing))
		assert.Equal(t, Ingredient{Name: "  Ovo "}, ing)

		out, err := json.Marshal(ing)
		require.NoError(t, err)
		assert.JSONEq(t, `"  Ovo "`, string(out))
	})

	t.Run("Structured", func(t *testing.T) {
		var ing Ingredient
		require.NoError(t, json.Unmarshal([]byte(`{"name":"Arroz","qty":0.5,"unit":"xícara"}`), &ing))
		assert.Equal(t, Ingredient{Name: "Arroz", Quantity: 0.5, Unit: "xícara", Structured: true}, ing)
	})

	t.Run("InvalidShape", func(t *testing.T) {
		var ing Ingredient
		assert.Error(t, json.Unmarshal([]byte(`42`), &ing))
	})
}

func TestOptionDecode(t *testing.T) {
	raw := `{"name":"Frango Grelhado","ingredients":["Alface",{"name":"Frango","qty":200,"unit":"g"}],"proteins":["frango"]}`

	var opt Option
	require.NoError(t, json.Unmarshal([]byte(raw), &opt))

	require.Len(t, opt.Ingredients, 2)
	assert.False(t, opt.Ingredients[0].Structured)
	assert.True(t, opt.Ingredients[1].Structured)
	assert.True(t, opt.HasProtein(map[string]struct{}{"frango": {}}))
	assert.False(t, opt.HasProtein(map[string]struct{}{"peixe": {}}))
}

func TestKeywordTablePreservesOrder(t *testing.T) {
	raw := `{"temperos":["alho"],"proteinas":["frango","ovo"],"legumes":["cebola"]}`

	var table KeywordTable
	require.NoError(t, json.Unmarshal([]byte(raw), &table))

	require.Len(t, table, 3)
	assert.Equal(t, Seasonings, table[0].Category)
	assert.Equal(t, Proteins, table[1].Category)
	assert.Equal(t, []string{"frango", "ovo"}, table[1].Keywords)
	assert.Equal(t, Vegetables, table[2].Category)

	out, err := json.Marshal(table)
	require.NoError(t, err)
	assert.Equal(t, `{"temperos":["alho"],"proteinas":["frango","ovo"],"legumes":["cebola"]}`, string(out))
}

func TestKeywordTableRejectsArray(t *testing.T) {
	var table KeywordTable
	assert.Error(t, json.Unmarshal([]byte(`[]`), &table))
}

func TestCatalog(t *testing.T) {
	options := map[Type][]Option{
		Lunch: {
			{Name: "Frango Grelhado", Proteins: []string{"frango"}},
			{Name: "Feijoada", Proteins: []string{"porco", "feijao"}},
		},
	}
	settings := Settings{
		ProteinLabels: map[string]string{"frango": "Frango"},
	}
	c := NewCatalog(options, settings)

	// mutating the input must not leak into the catalog
	options[Lunch][0].Name = "changed"

	opt, ok := c.Find(Lunch, "Frango Grelhado")
	require.True(t, ok)
	assert.Equal(t, []string{"frango"}, opt.Proteins)

	_, ok = c.Find(Breakfast, "Frango Grelhado")
	assert.False(t, ok)

	assert.Equal(t, "Frango", c.ProteinLabel("frango"))
	assert.Equal(t, "porco", c.ProteinLabel("porco"))
	assert.Equal(t, []string{"feijao", "frango", "porco"}, c.ProteinTags())
	assert.False(t, c.Empty())
	assert.True(t, NewCatalog(nil, Settings{}).Empty())
}

func TestParseType(t *testing.T) {
	mt, err := ParseType(" Lunch ")
	require.NoError(t, err)
	assert.Equal(t, Lunch, mt)
	assert.Equal(t, "Almoço", mt.Label())

	_, err = ParseType("dinner")
	assert.Error(t, err)
}
