package fuel

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxHistory is the number of entries kept in the calculation history.
const MaxHistory = 50

// EntryType identifies the calculator that produced a history entry.
type EntryType string

const (
	EntryComparison EntryType = "comparacao"
	EntryTrip       EntryType = "viagem"
	EntryEconomy    EntryType = "economia"
)

var entryLabels = map[EntryType]string{
	EntryComparison: "Comparação",
	EntryTrip:       "Viagem",
	EntryEconomy:    "Economia",
}

// Label returns the display name of the entry type.
func (t EntryType) Label() string {
	if l, ok := entryLabels[t]; ok {
		return l
	}
	return string(t)
}

func entryTypeFromLabel(label string) EntryType {
	for t, l := range entryLabels {
		if l == label {
			return t
		}
	}
	return EntryType(label)
}

const (
	dateLayout = "02/01/2006"
	timeLayout = "15:04"
)

// Entry is one stored calculation.
type Entry struct {
	ID         string    `json:"id"`
	Type       EntryType `json:"type"`
	Distance   float64   `json:"distance"`
	BestOption string    `json:"bestOption"`
	Cost       float64   `json:"cost"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
}

// NewEntry stamps a calculation with a fresh id and the local date and time.
func NewEntry(t EntryType, distance float64, best string, cost float64, now time.Time) Entry {
	return Entry{
		ID:         uuid.NewString(),
		Type:       t,
		Distance:   distance,
		BestOption: best,
		Cost:       cost,
		Date:       now.Format(dateLayout),
		Time:       now.Format(timeLayout),
	}
}

// ComparisonEntry records a comparison result.
func ComparisonEntry(c Comparison, now time.Time) Entry {
	best := c.BestLabel
	if best == "" {
		best = "-"
	}
	return NewEntry(EntryComparison, c.Distance, best, c.BestCost, now)
}

// TripEntry records a trip result.
func TripEntry(fuel Type, t Trip, now time.Time) Entry {
	return NewEntry(EntryTrip, t.Distance, fuel.Label(), t.Cost, now)
}

// EconomyEntry records a consumption measurement.
func EconomyEntry(in EconomyInput, e Economy, now time.Time) Entry {
	return NewEntry(EntryEconomy, in.Distance, fmt.Sprintf("%s km/l", FormatNumber(e.Consumption, 2)), e.TotalCost, now)
}

// Details is the human readable summary used in exports.
func (e Entry) Details() string {
	return fmt.Sprintf("Distância: %s km", FormatNumber(e.Distance, 1))
}

// History is the calculation history, newest first.
type History []Entry

// Add returns a new history with e in front, trimmed to MaxHistory entries.
func (h History) Add(e Entry) History {
	next := make(History, 0, min(len(h)+1, MaxHistory))
	next = append(next, e)
	for _, old := range h {
		if len(next) == MaxHistory {
			break
		}
		next = append(next, old)
	}
	return next
}

// Remove returns a new history without the entry with the given id.
func (h History) Remove(id string) History {
	next := make(History, 0, len(h))
	for _, e := range h {
		if e.ID != id {
			next = append(next, e)
		}
	}
	return next
}
