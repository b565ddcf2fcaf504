package accesslog

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logwatch/pkg/models"
)

func TestDecoderWithHeader(t *testing.T) {
	input := `"remotehost","rfc931","authuser","date","request","status","bytes"
"10.0.0.2","-","apache",1549573860,"GET /api/user HTTP/1.0",200,1234
"10.0.0.4","-","apache",1549573860,"GET / HTTP/1.0",503,0
`
	d := NewDecoder(strings.NewReader(input))

	rec, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, models.Record{
		RemoteHost: "10.0.0.2",
		RFC931:     "-",
		AuthUser:   "apache",
		Date:       1549573860,
		Request:    "GET /api/user HTTP/1.0",
		Status:     200,
		Bytes:      1234,
	}, rec)

	rec, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, uint16(503), rec.Status)

	_, err = d.Next()
	assert.Equal(t, io.EOF, err)
}

func TestDecoderHeaderReordersColumns(t *testing.T) {
	input := "date,status,bytes,request,remotehost,authuser,rfc931\n" +
		"100,404,5,GET /x HTTP/1.0,10.0.0.1,bob,-\n"
	rec, err := NewDecoder(strings.NewReader(input)).Next()
	require.NoError(t, err)
	assert.Equal(t, int64(100), rec.Date)
	assert.Equal(t, uint16(404), rec.Status)
	assert.Equal(t, "bob", rec.AuthUser)
	assert.Equal(t, "10.0.0.1", rec.RemoteHost)
}

func TestIsHeader(t *testing.T) {
	assert.True(t, IsHeader(Columns))
	assert.True(t, IsHeader([]string{" Date ", "STATUS", "bytes", "request", "remotehost", "authuser", "rfc931", "extra"}))
	assert.False(t, IsHeader([]string{"remotehost", "date"}))
	assert.False(t, IsHeader([]string{"date", "-", "date", "42", "GET / HTTP/1.0", "200", "1"}))
}

func TestDecoderKeepsFirstRowNamedDate(t *testing.T) {
	input := "date,-,date,42,GET /api HTTP/1.0,200,7\n" +
		"10.0.0.1,-,apache,43,GET / HTTP/1.0,200,1\n"
	d := NewDecoder(strings.NewReader(input))

	rec, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, "date", rec.RemoteHost)
	assert.Equal(t, "date", rec.AuthUser)
	assert.Equal(t, int64(42), rec.Date)

	rec, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(43), rec.Date)
}

func TestDecoderWithoutHeader(t *testing.T) {
	input := "10.0.0.1,-,apache,42,DELETE /12345678/1/2 HTTP/1.0,204,0\n"
	rec, err := NewDecoder(strings.NewReader(input)).Next()
	require.NoError(t, err)
	assert.Equal(t, int64(42), rec.Date)
	assert.Equal(t, "DELETE /12345678/1/2 HTTP/1.0", rec.Request)
}

func TestDecoderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
		line  int
	}{
		{"bad date", "10.0.0.1,-,apache,yesterday,GET / HTTP/1.0,200,1\n", "date", 1},
		{"bad status", "10.0.0.1,-,apache,1,GET / HTTP/1.0,ok,1\n", "status", 1},
		{"status overflow", "10.0.0.1,-,apache,1,GET / HTTP/1.0,70000,1\n", "status", 1},
		{"negative bytes", "10.0.0.1,-,apache,1,GET / HTTP/1.0,200,-1\n", "bytes", 1},
		{"short row", "10.0.0.1,-,apache,1\n", "request", 1},
		{"malformed request", "10.0.0.1,-,apache,1,GET,200,1\n", "request", 1},
		{"second line", "10.0.0.1,-,apache,1,GET / HTTP/1.0,200,1\n10.0.0.1,-,apache,x,GET / HTTP/1.0,200,1\n", "date", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(strings.NewReader(tt.input))
			var err error
			for err == nil {
				_, err = d.Next()
			}
			var derr *DecodeError
			require.True(t, errors.As(err, &derr), "got %v", err)
			assert.Equal(t, tt.field, derr.Field)
			assert.Equal(t, tt.line, derr.Line)
		})
	}
}

func TestLayoutFromHeaderMissingColumn(t *testing.T) {
	_, err := LayoutFromHeader([]string{"remotehost", "date"})
	assert.Error(t, err)

	d := NewDecoder(strings.NewReader("remotehost,date\n"))
	_, err = d.Next()
	var derr *DecodeError
	assert.True(t, errors.As(err, &derr))
}

func TestFormatRoundTripsThroughDecoder(t *testing.T) {
	rec := models.Record{RemoteHost: "10.0.0.3", RFC931: "-", AuthUser: "apache", Date: 7, Request: "PUT /user HTTP/1.0", Status: 301, Bytes: 99}
	line := strings.Join(Format(rec), ",") + "\n"
	got, err := NewDecoder(strings.NewReader(line)).Next()
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}
