package meal

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Category is a shopping-list section.
type Category string

const (
	Proteins   Category = "proteinas"
	Grains     Category = "graos"
	Vegetables Category = "legumes"
	Fruits     Category = "frutas"
	Seasonings Category = "temperos"
	Other      Category = "outros"
)

// Categories lists every category in display order.
var Categories = []Category{Proteins, Grains, Vegetables, Fruits, Seasonings, Other}

var categoryLabels = map[Category]string{
	Proteins:   "Proteínas",
	Grains:     "Grãos",
	Vegetables: "Legumes e Verduras",
	Fruits:     "Frutas",
	Seasonings: "Temperos",
	Other:      "Outros",
}

// Label returns the section title of the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether c belongs to the fixed enumeration.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// CategoryKeywords binds a category to the keywords that select it.
type CategoryKeywords struct {
	Category Category
	Keywords []string
}

// KeywordTable is the ordered keyword table used for classification. Order is
// significant: the first category with a matching keyword wins.
type KeywordTable []CategoryKeywords

// UnmarshalJSON decodes a JSON object while keeping the declaration order of
// its keys.
func (t *KeywordTable) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read keyword table: %w", err)
	}
	if tok == nil {
		*t = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("keyword table must be an object, got %v", tok)
	}

	var table KeywordTable
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read keyword table key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected keyword table key %v", keyTok)
		}

		var keywords []string
		if err := dec.Decode(&keywords); err != nil {
			return fmt.Errorf("failed to decode keywords for %q: %w", key, err)
		}
		table = append(table, CategoryKeywords{Category: Category(key), Keywords: keywords})
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to close keyword table: %w", err)
	}

	*t = table
	return nil
}

// MarshalJSON writes the table as a JSON object in declaration order.
func (t KeywordTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ck := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(ck.Category))
		if err != nil {
			return nil, err
		}
		keywords := ck.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		val, err := json.Marshal(keywords)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
