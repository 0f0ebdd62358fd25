// Package validation implements the validation execution domain for
// Warden: datasets, bounded parallel rule evaluation, and persisted
// flagged items.
package validation

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/wardenlabs/warden/pkg/condition"
)

// Dataset is an ordered collection of rows. Row indexes are dense and
// zero-based from input order. Fields preserves first-seen column order
// and drives the within-row ordering of outcomes.
type Dataset struct {
	Fields []string
	Rows   []condition.Row
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

func (d *Dataset) fieldIndex(field string) int {
	for i, f := range d.Fields {
		if f == field {
			return i
		}
	}
	return len(d.Fields)
}

// DatasetFromRows builds a Dataset from decoded JSON rows. Values
// coerce by content: numeric strings become numbers, ISO-8601-like
// strings become dates, everything else stays text. Field order is
// taken from the order fields first appear across rows, using the raw
// JSON key order when available.
func DatasetFromRows(rows []map[string]any, fieldOrder []string) *Dataset {
	ds := &Dataset{Rows: make([]condition.Row, 0, len(rows))}

	seen := make(map[string]bool)
	appendField := func(f string) {
		if !seen[f] {
			seen[f] = true
			ds.Fields = append(ds.Fields, f)
		}
	}
	for _, f := range fieldOrder {
		appendField(f)
	}

	for _, raw := range rows {
		row := make(condition.Row, len(raw))
		for field, value := range raw {
			appendField(field)
			row[field] = condition.From(value)
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

// DatasetFromCSV reads a header row plus data rows. Cell values coerce
// the same way as JSON rows. Empty cells are treated as missing fields,
// not empty text.
func DatasetFromCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty csv", ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read csv header: %v", ErrInvalidInput, err)
	}

	ds := &Dataset{Fields: header}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read csv row %d: %v", ErrInvalidInput, len(ds.Rows)+1, err)
		}

		row := make(condition.Row, len(header))
		for i, cell := range record {
			if i >= len(header) || cell == "" {
				continue
			}
			row[header[i]] = condition.Coerce(cell)
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}
