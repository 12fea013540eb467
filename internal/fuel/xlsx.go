package fuel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const historySheet = "Histórico"

// WriteHistoryXLSX writes the history as a spreadsheet with the same columns
// as the CSV export. Distance and cost are stored as numbers.
func WriteHistoryXLSX(w io.Writer, h History) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(historySheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(HistoryHeader))
	for i, name := range HistoryHeader {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range h {
		row := []interface{}{
			e.Date,
			e.Time,
			e.Type.Label(),
			e.Details(),
			e.BestOption,
			e.Cost,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}
