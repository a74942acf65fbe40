// Package reportsvc renders finalized assessment rows as downloadable
// CSV and PDF reports.
package reportsvc

import (
	"encoding/csv"
	"strings"

	"github.com/pkg/errors"

	"github.com/stemcert/backend/core/assessment"
	"github.com/stemcert/backend/storage/csvstore"
)

// CSVText renders rows as CSV in schema column order. Output is
// deterministic: the same rows always produce byte-identical text.
func CSVText(rows []assessment.Row) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	columns := csvstore.Columns()
	if err := w.Write(columns); err != nil {
		return "", errors.Wrap(err, "writing report header")
	}
	record := make([]string, len(columns))
	for i := range rows {
		cells := csvstore.MarshalRow(rows[i])
		for j, name := range columns {
			record[j] = cells[name]
		}
		if err := w.Write(record); err != nil {
			return "", errors.Wrap(err, "writing report row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, "flushing report")
	}
	return b.String(), nil
}
