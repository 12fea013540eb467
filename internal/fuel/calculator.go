package fuel

import (
	"fmt"
	"strings"
)

// Type is a kind of fuel.
type Type string

const (
	Gasoline Type = "gasolina"
	Ethanol  Type = "etanol"
	Diesel   Type = "diesel"
	GNV      Type = "gnv"
)

// Types lists the supported fuels in display order.
var Types = []Type{Gasoline, Ethanol, Diesel, GNV}

var typeLabels = map[Type]string{
	Gasoline: "Gasolina",
	Ethanol:  "Etanol",
	Diesel:   "Diesel",
	GNV:      "GNV",
}

// Label returns the display name of the fuel.
func (t Type) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// ParseType converts user input into a fuel type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := typeLabels[t]; !ok {
		return "", fmt.Errorf("unknown fuel type %q", s)
	}
	return t, nil
}

// EthanolParityRatio is the ethanol/gasoline price ratio under which ethanol
// is the cheaper choice for a flex engine.
const EthanolParityRatio = 0.7

// Quote is the price and the vehicle's consumption for one fuel.
type Quote struct {
	Fuel        Type    `json:"fuel"`
	Price       float64 `json:"price"`
	Consumption float64 `json:"consumption"`
}

// CompareInput holds the comparison form.
type CompareInput struct {
	Distance float64 `json:"distance"`
	Quotes   []Quote `json:"quotes"`
}

// FuelCost is the computed cost of one quote.
type FuelCost struct {
	Fuel      Type    `json:"fuel"`
	Label     string  `json:"label"`
	CostPerKm float64 `json:"cost_per_km"`
	TripCost  float64 `json:"trip_cost"`
	Valid     bool    `json:"valid"`
}

// Comparison is the result of comparing quotes.
type Comparison struct {
	Distance     float64    `json:"distance"`
	Options      []FuelCost `json:"options"`
	Best         Type       `json:"best,omitempty"`
	BestLabel    string     `json:"best_label,omitempty"`
	BestCost     float64    `json:"best_cost"`
	Savings      float64    `json:"savings"`
	EthanolRatio float64    `json:"ethanol_ratio,omitempty"`
	Advice       string     `json:"advice,omitempty"`
}

// Compare computes the cost per km of every quote and picks the cheapest.
// Quotes with a non-positive price or consumption are reported but never win.
// When distance is 0 the trip costs are 0 and the choice is made per km.
func Compare(in CompareInput) Comparison {
	distance := nonNegative(in.Distance)
	result := Comparison{Distance: distance}

	var best, worst *FuelCost
	for _, q := range in.Quotes {
		fc := FuelCost{Fuel: q.Fuel, Label: q.Fuel.Label()}
		if q.Price > 0 && q.Consumption > 0 {
			fc.Valid = true
			fc.CostPerKm = q.Price / q.Consumption
			fc.TripCost = round2(fc.CostPerKm * distance)
		}
		result.Options = append(result.Options, fc)
	}

	for i := range result.Options {
		fc := &result.Options[i]
		if !fc.Valid {
			continue
		}
		if best == nil || fc.CostPerKm < best.CostPerKm {
			best = fc
		}
		if worst == nil || fc.CostPerKm > worst.CostPerKm {
			worst = fc
		}
	}
	if best != nil {
		result.Best = best.Fuel
		result.BestLabel = best.Label
		result.BestCost = best.TripCost
		result.Savings = round2(worst.TripCost - best.TripCost)
	}

	result.EthanolRatio, result.Advice = ethanolAdvice(in.Quotes)
	return result
}

func ethanolAdvice(quotes []Quote) (float64, string) {
	var gasoline, ethanol float64
	for _, q := range quotes {
		switch q.Fuel {
		case Gasoline:
			gasoline = q.Price
		case Ethanol:
			ethanol = q.Price
		}
	}
	if gasoline <= 0 || ethanol <= 0 {
		return 0, ""
	}
	ratio := ethanol / gasoline
	if ratio <= EthanolParityRatio {
		return ratio, fmt.Sprintf("Etanol compensa: custa %s%% do preço da gasolina.", FormatNumber(ratio*100, 1))
	}
	return ratio, fmt.Sprintf("Gasolina compensa: etanol custa %s%% do preço da gasolina.", FormatNumber(ratio*100, 1))
}

// TripInput holds the trip form.
type TripInput struct {
	Distance    float64 `json:"distance"`
	Consumption float64 `json:"consumption"`
	Price       float64 `json:"price"`
	RoundTrip   bool    `json:"round_trip"`
	Passengers  int     `json:"passengers"`
}

// Trip is the cost of a trip.
type Trip struct {
	Distance         float64 `json:"distance"`
	Liters           float64 `json:"liters"`
	Cost             float64 `json:"cost"`
	CostPerPassenger float64 `json:"cost_per_passenger"`
}

// CalculateTrip computes fuel volume and cost for a trip. A round trip
// doubles the distance; the cost is split among at least one passenger.
func CalculateTrip(in TripInput) Trip {
	distance := nonNegative(in.Distance)
	if in.RoundTrip {
		distance *= 2
	}
	trip := Trip{Distance: distance}
	if in.Consumption > 0 {
		trip.Liters = round2(distance / in.Consumption)
		trip.Cost = round2(distance / in.Consumption * nonNegative(in.Price))
	}
	passengers := in.Passengers
	if passengers < 1 {
		passengers = 1
	}
	trip.CostPerPassenger = round2(trip.Cost / float64(passengers))
	return trip
}

// EconomyInput holds the consumption form: distance driven and fuel used.
type EconomyInput struct {
	Distance float64 `json:"distance"`
	Liters   float64 `json:"liters"`
	Price    float64 `json:"price"`
}

// Economy is the measured consumption of a vehicle.
type Economy struct {
	Consumption float64 `json:"consumption"`
	CostPerKm   float64 `json:"cost_per_km"`
	TotalCost   float64 `json:"total_cost"`
}

// CalculateEconomy derives km/l and cost per km from a measured tank.
func CalculateEconomy(in EconomyInput) Economy {
	distance := nonNegative(in.Distance)
	liters := nonNegative(in.Liters)
	price := nonNegative(in.Price)

	eco := Economy{TotalCost: round2(liters * price)}
	if liters > 0 {
		eco.Consumption = round2(distance / liters)
	}
	if distance > 0 {
		eco.CostPerKm = round2(liters * price / distance)
	}
	return eco
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
