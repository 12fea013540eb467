package meal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Type identifies a meal slot of the day.
type Type string

const (
	Breakfast Type = "breakfast"
	Lunch     Type = "lunch"
	Snack     Type = "snack"
)

// Types lists every meal type in display order.
var Types = []Type{Breakfast, Lunch, Snack}

// DaysPerWeek is the fixed number of day slots per meal type.
const DaysPerWeek = 7

// DayNames are the labels of the day slots, Monday first.
var DayNames = [DaysPerWeek]string{"Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado", "Domingo"}

var typeLabels = map[Type]string{
	Breakfast: "Café da Manhã",
	Lunch:     "Almoço",
	Snack:     "Lanche da Tarde",
}

// Label returns the human readable name of the meal type.
func (t Type) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Valid reports whether t is one of the known meal types.
func (t Type) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// ParseType converts a user supplied string into a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown meal type %q", s)
	}
	return t, nil
}

// Ingredient is one entry of a meal's ingredient list. Entries declared as a
// bare name in the data files have Structured set to false and take their
// quantity and unit from the catalog defaults.
type Ingredient struct {
	Name       string
	Quantity   float64
	Unit       string
	Structured bool
}

type structuredIngredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"qty,omitempty"`
	Unit     string  `json:"unit,omitempty"`
}

// UnmarshalJSON accepts either a JSON string or a {name, qty, unit} object.
func (i *Ingredient) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*i = Ingredient{Name: name}
		return nil
	}

	var s structuredIngredient
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode ingredient: %w", err)
	}
	*i = Ingredient{Name: s.Name, Quantity: s.Quantity, Unit: s.Unit, Structured: true}
	return nil
}

// MarshalJSON writes the ingredient back in the form it was declared in.
func (i Ingredient) MarshalJSON() ([]byte, error) {
	if !i.Structured {
		return json.Marshal(i.Name)
	}
	return json.Marshal(structuredIngredient{Name: i.Name, Quantity: i.Quantity, Unit: i.Unit})
}

// Option is a named dish that can be planned for a meal slot.
type Option struct {
	Name        string       `json:"name"`
	Ingredients []Ingredient `json:"ingredients"`
	Proteins    []string     `json:"proteins"`
}

// HasProtein reports whether the option is tagged with any of the given tags.
func (o Option) HasProtein(tags map[string]struct{}) bool {
	for _, p := range o.Proteins {
		if _, ok := tags[p]; ok {
			return true
		}
	}
	return false
}
