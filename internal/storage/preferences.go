package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"weekly-planner/internal/fuel"
)

// Record keys of the fuel calculator.
const (
	KeyComparison = "comparador"
	KeyTrip       = "viagem"
	KeyEconomy    = "economia"
	KeyHistory    = "historico"
	KeyTheme      = "tema"
	KeyFuelTypes  = "combustiveis"
)

// InputKeys are the keys holding saved calculator forms.
var InputKeys = []string{KeyComparison, KeyTrip, KeyEconomy}

// Theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Preferences reads and writes the calculator's persisted state. Reads fall
// back to defaults and writes never fail: problems are logged and dropped.
type Preferences struct {
	store  *Store
	logger *zap.Logger
}

// NewPreferences creates a new Preferences.
func NewPreferences(store *Store, logger *zap.Logger) *Preferences {
	return &Preferences{store: store, logger: logger}
}

// ValidInputKey reports whether key names a calculator form.
func ValidInputKey(key string) bool {
	for _, k := range InputKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Inputs returns the saved form under key, or nil when none was saved.
func (p *Preferences) Inputs(ctx context.Context, userID, key string) json.RawMessage {
	data, err := p.store.Get(ctx, userID, key)
	if err != nil {
		p.logReadError(userID, key, err)
		return nil
	}
	if !json.Valid(data) {
		p.logger.Warn("Discarding invalid stored form", zap.String("user_id", userID), zap.String("key", key))
		return nil
	}
	return json.RawMessage(data)
}

// SaveInputs stores a calculator form.
func (p *Preferences) SaveInputs(ctx context.Context, userID, key string, form json.RawMessage) {
	if !json.Valid(form) {
		p.logWriteError(userID, key, fmt.Errorf("invalid json"))
		return
	}
	p.logWriteError(userID, key, p.store.Put(ctx, userID, key, form))
}

// History returns the calculation history, newest first.
func (p *Preferences) History(ctx context.Context, userID string) fuel.History {
	var h fuel.History
	if err := p.store.GetJSON(ctx, userID, KeyHistory, &h); err != nil {
		p.logReadError(userID, KeyHistory, err)
		return nil
	}
	return h
}

// SaveHistory stores the calculation history.
func (p *Preferences) SaveHistory(ctx context.Context, userID string, h fuel.History) {
	if h == nil {
		h = fuel.History{}
	}
	p.logWriteError(userID, KeyHistory, p.store.PutJSON(ctx, userID, KeyHistory, h))
}

// AddToHistory prepends e to the stored history and returns the new history.
func (p *Preferences) AddToHistory(ctx context.Context, userID string, e fuel.Entry) fuel.History {
	h := p.History(ctx, userID).Add(e)
	p.SaveHistory(ctx, userID, h)
	return h
}

// ClearHistory removes every history entry.
func (p *Preferences) ClearHistory(ctx context.Context, userID string) {
	p.logWriteError(userID, KeyHistory, p.store.Delete(ctx, userID, KeyHistory))
}

// Theme returns the saved theme, light by default.
func (p *Preferences) Theme(ctx context.Context, userID string) string {
	var theme string
	if err := p.store.GetJSON(ctx, userID, KeyTheme, &theme); err != nil {
		p.logReadError(userID, KeyTheme, err)
		return ThemeLight
	}
	if theme != ThemeDark {
		return ThemeLight
	}
	return theme
}

// SaveTheme stores the theme. Unknown values are stored as light.
func (p *Preferences) SaveTheme(ctx context.Context, userID, theme string) {
	if theme != ThemeDark {
		theme = ThemeLight
	}
	p.logWriteError(userID, KeyTheme, p.store.PutJSON(ctx, userID, KeyTheme, theme))
}

// FuelTypes returns the fuels selected for comparison. All fuels are
// selected by default.
func (p *Preferences) FuelTypes(ctx context.Context, userID string) []fuel.Type {
	var types []fuel.Type
	if err := p.store.GetJSON(ctx, userID, KeyFuelTypes, &types); err != nil {
		p.logReadError(userID, KeyFuelTypes, err)
		return append([]fuel.Type(nil), fuel.Types...)
	}
	return types
}

// SaveFuelTypes stores the selected fuels, dropping unknown ones.
func (p *Preferences) SaveFuelTypes(ctx context.Context, userID string, types []fuel.Type) {
	valid := make([]fuel.Type, 0, len(types))
	for _, t := range types {
		if parsed, err := fuel.ParseType(string(t)); err == nil {
			valid = append(valid, parsed)
		}
	}
	p.logWriteError(userID, KeyFuelTypes, p.store.PutJSON(ctx, userID, KeyFuelTypes, valid))
}

func (p *Preferences) logReadError(userID, key string, err error) {
	if errors.Is(err, ErrNotFound) {
		return
	}
	p.logger.Error("Failed to read preference", zap.String("user_id", userID), zap.String("key", key), zap.Error(err))
}

func (p *Preferences) logWriteError(userID, key string, err error) {
	if err == nil {
		return
	}
	p.logger.Error("Failed to save preference", zap.String("user_id", userID), zap.String("key", key), zap.Error(err))
}
