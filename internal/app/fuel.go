package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"weekly-planner/internal/fuel"
	"weekly-planner/internal/storage"
)

// ExportFormat is a history export file format.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// CompareFuels compares fuel quotes and records the result in the history.
func (a *App) CompareFuels(ctx context.Context, userID string, in fuel.CompareInput) fuel.Comparison {
	start := time.Now()
	result := fuel.Compare(in)
	a.record(ctx, userID, fuel.ComparisonEntry(result, a.now()))
	a.track(ctx, "fuel_compare", userID, nil, nil, start)
	return result
}

// Trip computes the cost of a trip and records it in the history.
func (a *App) Trip(ctx context.Context, userID string, fuelType fuel.Type, in fuel.TripInput) fuel.Trip {
	start := time.Now()
	result := fuel.CalculateTrip(in)
	a.record(ctx, userID, fuel.TripEntry(fuelType, result, a.now()))
	a.track(ctx, "fuel_trip", userID, nil, nil, start)
	return result
}

// Economy computes the measured consumption and records it in the history.
func (a *App) Economy(ctx context.Context, userID string, in fuel.EconomyInput) fuel.Economy {
	start := time.Now()
	result := fuel.CalculateEconomy(in)
	a.record(ctx, userID, fuel.EconomyEntry(in, result, a.now()))
	a.track(ctx, "fuel_economy", userID, nil, nil, start)
	return result
}

func (a *App) record(ctx context.Context, userID string, e fuel.Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prefs.AddToHistory(ctx, userID, e)
}

// History returns the user's calculation history, newest first.
func (a *App) History(ctx context.Context, userID string) fuel.History {
	return a.prefs.History(ctx, userID)
}

// ClearHistory removes every history entry of the user.
func (a *App) ClearHistory(ctx context.Context, userID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prefs.ClearHistory(ctx, userID)
}

// RemoveHistoryEntry deletes one entry by id.
func (a *App) RemoveHistoryEntry(ctx context.Context, userID, id string) fuel.History {
	a.mu.Lock()
	defer a.mu.Unlock()
	h := a.prefs.History(ctx, userID).Remove(id)
	a.prefs.SaveHistory(ctx, userID, h)
	return h
}

// ExportHistory writes the user's history in the given format.
func (a *App) ExportHistory(ctx context.Context, userID string, format ExportFormat, w io.Writer) error {
	h := a.History(ctx, userID)
	switch format {
	case FormatCSV:
		return fuel.WriteHistoryCSV(w, h)
	case FormatXLSX:
		return fuel.WriteHistoryXLSX(w, h)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// ImportHistory reads a CSV export and adds its entries to the user's history.
// The file lists newest first, so entries are added from the bottom up.
// It returns the number of entries read.
func (a *App) ImportHistory(ctx context.Context, userID string, r io.Reader) (int, error) {
	imported, err := fuel.ParseHistoryCSV(r)
	if err != nil {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	h := a.prefs.History(ctx, userID)
	for i := len(imported) - 1; i >= 0; i-- {
		h = h.Add(imported[i])
	}
	a.prefs.SaveHistory(ctx, userID, h)
	return len(imported), nil
}

// Theme returns the user's theme.
func (a *App) Theme(ctx context.Context, userID string) string {
	return a.prefs.Theme(ctx, userID)
}

// SaveTheme stores the user's theme.
func (a *App) SaveTheme(ctx context.Context, userID, theme string) {
	a.prefs.SaveTheme(ctx, userID, theme)
}

// FuelTypes returns the fuels the user compares.
func (a *App) FuelTypes(ctx context.Context, userID string) []fuel.Type {
	return a.prefs.FuelTypes(ctx, userID)
}

// SaveFuelTypes stores the fuels the user compares.
func (a *App) SaveFuelTypes(ctx context.Context, userID string, types []fuel.Type) {
	a.prefs.SaveFuelTypes(ctx, userID, types)
}

// Inputs returns a saved calculator form.
func (a *App) Inputs(ctx context.Context, userID, kind string) (json.RawMessage, error) {
	if !storage.ValidInputKey(kind) {
		return nil, fmt.Errorf("unknown form %q", kind)
	}
	return a.prefs.Inputs(ctx, userID, kind), nil
}

// SaveInputs stores a calculator form.
func (a *App) SaveInputs(ctx context.Context, userID, kind string, form json.RawMessage) error {
	if !storage.ValidInputKey(kind) {
		return fmt.Errorf("unknown form %q", kind)
	}
	a.prefs.SaveInputs(ctx, userID, kind, form)
	return nil
}
