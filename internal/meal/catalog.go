package meal

import "slices"

// DefaultUnit is the quantity and unit assumed for an ingredient listed by
// name only.
type DefaultUnit struct {
	Quantity float64 `json:"qty"`
	Unit     string  `json:"unit"`
}

// Settings mirrors the configuration document of the data set.
type Settings struct {
	CategoryKeywords        KeywordTable           `json:"categoryKeywords"`
	DefaultUnitByIngredient map[string]DefaultUnit `json:"defaultUnitByIngredient"`
	ProteinLabels           map[string]string      `json:"proteinLabels"`
}

// Catalog is the immutable set of meal options and settings loaded at startup.
// It is safe for concurrent use.
type Catalog struct {
	options  map[Type][]Option
	settings Settings
}

// NewCatalog copies the given options and settings into a Catalog.
func NewCatalog(options map[Type][]Option, settings Settings) *Catalog {
	c := &Catalog{
		options: make(map[Type][]Option, len(Types)),
		settings: Settings{
			CategoryKeywords:        append(KeywordTable(nil), settings.CategoryKeywords...),
			DefaultUnitByIngredient: make(map[string]DefaultUnit, len(settings.DefaultUnitByIngredient)),
			ProteinLabels:           make(map[string]string, len(settings.ProteinLabels)),
		},
	}
	for _, t := range Types {
		c.options[t] = append([]Option(nil), options[t]...)
	}
	for k, v := range settings.DefaultUnitByIngredient {
		c.settings.DefaultUnitByIngredient[k] = v
	}
	for k, v := range settings.ProteinLabels {
		c.settings.ProteinLabels[k] = v
	}
	return c
}

// Options returns the options declared for a meal type.
func (c *Catalog) Options(t Type) []Option {
	return append([]Option(nil), c.options[t]...)
}

// Find returns the option of meal type t with exactly the given name.
func (c *Catalog) Find(t Type, name string) (Option, bool) {
	for _, o := range c.options[t] {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}

// Keywords returns the ordered classification table.
func (c *Catalog) Keywords() KeywordTable {
	return append(KeywordTable(nil), c.settings.CategoryKeywords...)
}

// DefaultUnit returns the default quantity and unit for a bare ingredient name.
func (c *Catalog) DefaultUnit(name string) (DefaultUnit, bool) {
	d, ok := c.settings.DefaultUnitByIngredient[name]
	return d, ok
}

// ProteinLabel returns the display label of a protein tag, or the tag itself.
func (c *Catalog) ProteinLabel(tag string) string {
	if l, ok := c.settings.ProteinLabels[tag]; ok && l != "" {
		return l
	}
	return tag
}

// ProteinTags returns every protein tag referenced by an option, sorted.
func (c *Catalog) ProteinTags() []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, t := range Types {
		for _, o := range c.options[t] {
			for _, p := range o.Proteins {
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				tags = append(tags, p)
			}
		}
	}
	slices.Sort(tags)
	return tags
}

// Empty reports whether no option was loaded for any meal type.
func (c *Catalog) Empty() bool {
	for _, t := range Types {
		if len(c.options[t]) > 0 {
			return false
		}
	}
	return true
}
