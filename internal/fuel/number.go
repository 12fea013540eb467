package fuel

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// ParseNumber reads a user typed number. Both "5.49" and "5,49" are accepted;
// when a comma is present dots are taken as thousands separators. Anything
// that does not parse, or is not finite, yields 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseCurrency reads an amount such as "R$ 1.234,50".
func ParseCurrency(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	return ParseNumber(s)
}

// FormatCurrency renders an amount in reais, e.g. "R$ 1.234,50".
func FormatCurrency(v float64) string {
	return "R$ " + printer.Sprintf("%.2f", v)
}

// FormatNumber renders v with the given number of decimals using Brazilian
// separators.
func FormatNumber(v float64, decimals int) string {
	return printer.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Number is a user typed numeric field. It decodes from a JSON number or from
// a string in either decimal notation; anything else decodes as 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = Number(ParseNumber(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number(f)
		return nil
	}
	*n = 0
	return nil
}

// Float returns n as a float64.
func (n Number) Float() float64 {
	return float64(n)
}
