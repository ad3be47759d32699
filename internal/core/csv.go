package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

var csvHeader = []string{"Date", "Category", "Description", "Amount"}

// WriteCSV serializes the expenses in their given order as
// Date,Category,Description,Amount rows after a header row. Fields are
// quoted per RFC 4180, so free-text descriptions with embedded commas or
// newlines survive a round trip.
func WriteCSV(w io.Writer, expenses []Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range expenses {
		row := []string{e.Date.Key(), e.Category, e.Description, e.Amount.String()}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV renders the expense set as CSV text.
func ExportCSV(expenses []Expense) (string, error) {
	var sb strings.Builder
	if err := WriteCSV(&sb, expenses); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ImportCSV parses text produced by WriteCSV back into expenses. The header
// row is required and checked. Imported records carry no ID; they are drafts
// until the external store assigns one.
func ImportCSV(r io.Reader) ([]Expense, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read csv: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, want := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return nil, fmt.Errorf("unexpected csv header %q, want %q", header[i], want)
		}
	}

	var out []Expense
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		date, err := ParseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		amount, err := ParseMoney(row[3])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		e := Expense{
			Date:        date,
			Category:    row[1],
			Description: row[2],
			Amount:      amount,
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		out = append(out, e)
	}
	return out, nil
}
