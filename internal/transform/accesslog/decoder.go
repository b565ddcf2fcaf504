package accesslog

import (
	"encoding/csv"
	"errors"
	"io"

	"logwatch/pkg/models"
)

// Decoder reads Records from CSV text. A leading header row is detected and
// used to map columns by name; without one, Columns order is assumed.
type Decoder struct {
	r       *csv.Reader
	layout  Layout
	started bool
}

// NewDecoder creates a decoder over r.
func NewDecoder(r io.Reader) *Decoder {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return &Decoder{r: cr, layout: DefaultLayout()}
}

// Next returns the next record, or io.EOF at the end of input.
func (d *Decoder) Next() (models.Record, error) {
	for {
		row, err := d.r.Read()
		if err == io.EOF {
			return models.Record{}, io.EOF
		}
		if err != nil {
			var line int
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return models.Record{}, &DecodeError{Line: line, Err: err}
		}
		line, _ := d.r.FieldPos(0)

		if !d.started {
			d.started = true
			if IsHeader(row) {
				layout, err := LayoutFromHeader(row)
				if err != nil {
					return models.Record{}, &DecodeError{Line: line, Err: err}
				}
				d.layout = layout
				continue
			}
		}
		return d.layout.Parse(row, line)
	}
}
