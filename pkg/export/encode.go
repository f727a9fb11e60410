package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

func encodeText(w io.Writer, s *Snapshot) error {
	for _, r := range s.Rows {
		var err error
		if s.Kind == KindFeedbackHistory {
			_, err = fmt.Fprintf(w, "%s\n\n", r.Content)
		} else {
			_, err = fmt.Fprintf(w, "%s: %s\n", r.Role, r.Content)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func encodeJSON(w io.Writer, s *Snapshot) error {
	var v interface{} = s.Rows
	if s.Kind == KindFeedbackHistory {
		v = s.Feedback()
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return errors.Wrap(err, "could not encode json")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func encodeXLSX(w io.Writer, s *Snapshot) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	header := []interface{}{}
	for _, c := range s.Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return errors.Wrap(err, "could not write header")
	}

	for i, r := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.Role, r.Content}
		if s.Kind == KindFeedbackHistory {
			row = []interface{}{r.Content}
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return errors.Wrapf(err, "could not write row %d", i+1)
		}
	}

	return f.Write(w)
}

// ReadXLSX returns all rows of an exported spreadsheet, header included.
func ReadXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	defer func() {
		_ = f.Close()
	}()
	return f.GetRows(sheetName)
}
