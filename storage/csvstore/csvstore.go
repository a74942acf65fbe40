// Package csvstore implements the app's flat-file stores: the wide-schema
// assessment record table, the trainer directory and the staff table. Files
// are rewritten whole on every mutation; a rename makes the swap atomic at
// the file level.
package csvstore

import (
	"encoding/csv"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// readTable loads a CSV file into one map per record, keyed by header name.
// Columns absent from the file are synthesized with empty strings so callers
// can address the full schema; extra columns are preserved as-is. A missing
// file is an empty table.
func readTable(path string, columns []string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // header widths drift as the schema grows
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(columns))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		for _, name := range columns {
			if _, ok := row[name]; !ok {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// writeTable rewrites the file with the given rows in schema column order,
// via a temp file + rename.
func writeTable(path string, columns []string, rows []map[string]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	tmp, err := ioutil.TempFile(dir, filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(columns); err != nil {
		return errors.Wrapf(err, "writing %s header", path)
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, name := range columns {
			record[i] = row[name]
		}
		if err := w.Write(record); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "flushing %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "replacing %s", path)
}
