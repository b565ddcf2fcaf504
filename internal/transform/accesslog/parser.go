package accesslog

import (
	"fmt"
	"strconv"
	"strings"

	"logwatch/internal/stats"
	"logwatch/pkg/models"
)

// Columns is the CSV header written by the generator and accepted by Decoder.
var Columns = []string{"remotehost", "rfc931", "authuser", "date", "request", "status", "bytes"}

// DecodeError describes a row that could not be turned into a Record.
type DecodeError struct {
	Line  int
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: field %s: %v", e.Line, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Layout maps column names to positions in a row.
type Layout struct {
	index map[string]int
}

// DefaultLayout is the column order of Columns.
func DefaultLayout() Layout {
	index := make(map[string]int, len(Columns))
	for i, name := range Columns {
		index[name] = i
	}
	return Layout{index: index}
}

// IsHeader reports whether row is a header line: every name in Columns must
// appear, in any order and case.
func IsHeader(row []string) bool {
	if len(row) < len(Columns) {
		return false
	}
	names := make(map[string]struct{}, len(row))
	for _, field := range row {
		names[strings.ToLower(strings.TrimSpace(field))] = struct{}{}
	}
	for _, name := range Columns {
		if _, ok := names[name]; !ok {
			return false
		}
	}
	return true
}

// LayoutFromHeader builds a layout from a header row. Every known column must
// be present; extra columns are ignored.
func LayoutFromHeader(header []string) (Layout, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range Columns {
		if _, ok := index[name]; !ok {
			return Layout{}, fmt.Errorf("header is missing column %q", name)
		}
	}
	return Layout{index: index}, nil
}

// Parse converts one CSV row into a Record. line is used for error reporting.
func (l Layout) Parse(row []string, line int) (models.Record, error) {
	get := func(name string) (string, error) {
		i := l.index[name]
		if i >= len(row) {
			return "", &DecodeError{Line: line, Field: name, Err: fmt.Errorf("row has %d fields", len(row))}
		}
		return row[i], nil
	}

	var rec models.Record
	var err error
	if rec.RemoteHost, err = get("remotehost"); err != nil {
		return models.Record{}, err
	}
	if rec.RFC931, err = get("rfc931"); err != nil {
		return models.Record{}, err
	}
	if rec.AuthUser, err = get("authuser"); err != nil {
		return models.Record{}, err
	}
	if rec.Request, err = get("request"); err != nil {
		return models.Record{}, err
	}
	if !stats.ValidRequest(rec.Request) {
		return models.Record{}, &DecodeError{Line: line, Field: "request", Err: fmt.Errorf("malformed request line %q", rec.Request)}
	}

	raw, err := get("date")
	if err != nil {
		return models.Record{}, err
	}
	if rec.Date, err = strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err != nil {
		return models.Record{}, &DecodeError{Line: line, Field: "date", Err: err}
	}

	if raw, err = get("status"); err != nil {
		return models.Record{}, err
	}
	status, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 16)
	if err != nil {
		return models.Record{}, &DecodeError{Line: line, Field: "status", Err: err}
	}
	rec.Status = uint16(status)

	if raw, err = get("bytes"); err != nil {
		return models.Record{}, err
	}
	if rec.Bytes, err = strconv.ParseUint(strings.TrimSpace(raw), 10, 64); err != nil {
		return models.Record{}, &DecodeError{Line: line, Field: "bytes", Err: err}
	}
	return rec, nil
}

// Format renders a Record as a CSV row in Columns order.
func Format(rec models.Record) []string {
	return []string{
		rec.RemoteHost,
		rec.RFC931,
		rec.AuthUser,
		strconv.FormatInt(rec.Date, 10),
		rec.Request,
		strconv.FormatUint(uint64(rec.Status), 10),
		strconv.FormatUint(rec.Bytes, 10),
	}
}
