package fuel

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// HistoryHeader is the header row of the history export.
var HistoryHeader = []string{"Data", "Hora", "Tipo", "Detalhes", "Melhor Opção", "Custo"}

// WriteHistoryCSV writes the history as CSV, one quoted row per entry.
func WriteHistoryCSV(w io.Writer, h History) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(HistoryHeader, ",") + "\n"); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range h {
		if _, err := bw.WriteString(quoteRow(historyRow(e)) + "\n"); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func historyRow(e Entry) []string {
	return []string{
		e.Date,
		e.Time,
		e.Type.Label(),
		e.Details(),
		e.BestOption,
		FormatCurrency(e.Cost),
	}
}

func quoteRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// ParseHistoryCSV reads a history export back. Ids are regenerated.
func ParseHistoryCSV(r io.Reader) (History, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(HistoryHeader)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	for i, name := range HistoryHeader {
		if header[i] != name {
			return nil, fmt.Errorf("unexpected csv column %q, want %q", header[i], name)
		}
	}

	var h History
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		e := NewEntry(entryTypeFromLabel(rec[2]), parseDetails(rec[3]), rec[4], ParseCurrency(rec[5]), time.Time{})
		e.Date = rec[0]
		e.Time = rec[1]
		h = append(h, e)
	}
	return h, nil
}

func parseDetails(s string) float64 {
	s = strings.TrimPrefix(s, "Distância:")
	s = strings.TrimSuffix(strings.TrimSpace(s), "km")
	return ParseNumber(s)
}
