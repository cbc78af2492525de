package dataset

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvchat/internal/domain"
)

func TestLoad_BasicCSV(t *testing.T) {
	ds, err := Load(strings.NewReader("id,name,price\n1,apple,1.5\n2,banana,2.0\n"))
	require.NoError(t, err)

	rows, cols := ds.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, []string{"id", "name", "price"}, ds.ColumnNames())
	assert.Equal(t, domain.DTypeInteger, ds.Columns[0].DType)
	assert.Equal(t, domain.DTypeString, ds.Columns[1].DType)
	assert.Equal(t, domain.DTypeFloat, ds.Columns[2].DType)
}

func TestLoad_MissingTokens(t *testing.T) {
	ds, err := Load(strings.NewReader("a,b\n1,x\nNA,null\n,y\n"))
	require.NoError(t, err)

	a := ds.Columns[0]
	assert.Equal(t, []bool{false, true, true}, a.Missing)
	// Missing cells do not break numeric inference.
	assert.Equal(t, domain.DTypeInteger, a.DType)

	b := ds.Columns[1]
	assert.Equal(t, []bool{false, true, false}, b.Missing)
}

func TestLoad_DTypeInference(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want domain.DType
	}{
		{"integers", "c\n1\n-2\n30\n", domain.DTypeInteger},
		{"floats", "c\n1.5\n2\n-0.25\n", domain.DTypeFloat},
		{"booleans", "c\ntrue\nFalse\n", domain.DTypeBoolean},
		{"dates", "c\n2024-01-02\n2024-03-04\n", domain.DTypeDatetime},
		{"mixed", "c\n1\nabc\n", domain.DTypeString},
		{"all missing", "c\nNA\n\n", domain.DTypeString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Load(strings.NewReader(tt.csv))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ds.Columns[0].DType)
		})
	}
}

func TestLoad_Latin1Fallback(t *testing.T) {
	// 0xE9 is not valid UTF-8, so the loader falls back to Latin-1.
	ds, err := Load(bytes.NewReader([]byte("name\ncaf\xe9\n")))
	require.NoError(t, err)
	assert.Equal(t, "café", ds.Columns[0].Values[0])
}

func TestLoad_UTF8BOMStripped(t *testing.T) {
	ds, err := Load(bytes.NewReader([]byte("\xef\xbb\xbfa\n1\n")))
	require.NoError(t, err)
	assert.Equal(t, "a", ds.Columns[0].Name)
}

func TestLoad_Unreadable(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty", ""},
		{"whitespace only", "  \n  "},
		{"ragged rows", "a,b\n1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrDataLoad))
		})
	}
}

func TestLoad_HeaderOnly(t *testing.T) {
	ds, err := Load(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	rows, cols := ds.Shape()
	assert.Equal(t, 0, rows)
	assert.Equal(t, 2, cols)
}

func TestWrite_RoundTrip(t *testing.T) {
	ds, err := Load(strings.NewReader("a,b\n1,x\nNA,y\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(ds, &buf))
	assert.Equal(t, "a,b\n1,x\n,y\n", buf.String())
}
