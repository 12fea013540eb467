package planner

import (
	"slices"

	"weekly-planner/internal/meal"
)

// ProteinFilter is the set of protein tags the user wants to see. An empty
// filter allows every option. The zero value is an empty filter.
type ProteinFilter struct {
	tags map[string]struct{}
}

// NewProteinFilter builds a filter from the given tags.
func NewProteinFilter(tags ...string) ProteinFilter {
	f := ProteinFilter{tags: make(map[string]struct{}, len(tags))}
	for _, t := range tags {
		if t == "" {
			continue
		}
		f.tags[t] = struct{}{}
	}
	return f
}

// With returns a copy of the filter with tag enabled or disabled.
func (f ProteinFilter) With(tag string, enabled bool) ProteinFilter {
	next := NewProteinFilter(f.Tags()...)
	if enabled {
		if tag != "" {
			next.tags[tag] = struct{}{}
		}
	} else {
		delete(next.tags, tag)
	}
	return next
}

// Has reports whether tag is active.
func (f ProteinFilter) Has(tag string) bool {
	_, ok := f.tags[tag]
	return ok
}

// Empty reports whether no tag is active.
func (f ProteinFilter) Empty() bool {
	return len(f.tags) == 0
}

// Tags returns the active tags sorted.
func (f ProteinFilter) Tags() []string {
	tags := make([]string, 0, len(f.tags))
	for t := range f.tags {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags
}

// Allows reports whether opt passes the filter.
func (f ProteinFilter) Allows(opt meal.Option) bool {
	if f.Empty() {
		return true
	}
	return opt.HasProtein(f.tags)
}

// Apply keeps the options that pass the filter, preserving order.
func (f ProteinFilter) Apply(options []meal.Option) []meal.Option {
	if f.Empty() {
		return options
	}
	var out []meal.Option
	for _, o := range options {
		if f.Allows(o) {
			out = append(out, o)
		}
	}
	return out
}
