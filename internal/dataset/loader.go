// Package dataset ingests raw CSV bytes into the in-memory table form.
// Encoding is sniffed from the payload so files exported by spreadsheet
// tools with legacy single-byte encodings still load.
package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"csvchat/internal/domain"
)

var missingTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
}

var datetimeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
	"2006/01/02",
}

// Load reads CSV bytes from r and builds a Dataset. Structurally
// unreadable input (empty payload, no header, ragged rows) fails with an
// error matching domain.ErrDataLoad.
func Load(r io.Reader) (*domain.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataLoad, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty input", domain.ErrDataLoad)
	}
	decoded, _, err := transform.Bytes(detectEncoding(data).NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrDataLoad, err)
	}

	cr := csv.NewReader(bytes.NewReader(decoded))
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataLoad, err)
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, fmt.Errorf("%w: missing header row", domain.ErrDataLoad)
	}

	header := records[0]
	rows := records[1:]
	columns := make([]domain.Column, len(header))
	for j, name := range header {
		values := make([]string, len(rows))
		missing := make([]bool, len(rows))
		for i, rec := range rows {
			cell := strings.TrimSpace(rec[j])
			if _, ok := missingTokens[strings.ToLower(cell)]; ok {
				missing[i] = true
				continue
			}
			values[i] = cell
		}
		columns[j] = domain.Column{
			Name:    strings.TrimSpace(name),
			DType:   inferDType(values, missing),
			Values:  values,
			Missing: missing,
		}
	}
	return &domain.Dataset{Columns: columns, Rows: len(rows)}, nil
}

// Write renders the dataset back to CSV, with empty cells for missing
// values. Used by the session's diagnostic export.
func Write(ds *domain.Dataset, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.ColumnNames()); err != nil {
		return err
	}
	record := make([]string, len(ds.Columns))
	for i := 0; i < ds.Rows; i++ {
		for j, col := range ds.Columns {
			if col.Missing[i] {
				record[j] = ""
			} else {
				record[j] = col.Values[i]
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// detectEncoding sniffs BOMs first, accepts valid UTF-8, and otherwise
// falls back to Latin-1, which decodes any byte sequence.
func detectEncoding(data []byte) encoding.Encoding {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return unicode.UTF8BOM
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case utf8.Valid(data):
		return unicode.UTF8
	default:
		return charmap.ISO8859_1
	}
}

// inferDType picks the narrowest type all non-missing values fit.
func inferDType(values []string, missing []bool) domain.DType {
	allInt, allFloat, allBool, allTime := true, true, true, true
	seen := false
	for i, v := range values {
		if missing[i] {
			continue
		}
		seen = true
		if allInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				allFloat = false
			}
		}
		if allBool {
			switch strings.ToLower(v) {
			case "true", "false":
			default:
				allBool = false
			}
		}
		if allTime && !parsesAsTime(v) {
			allTime = false
		}
		if !allInt && !allFloat && !allBool && !allTime {
			return domain.DTypeString
		}
	}
	switch {
	case !seen:
		return domain.DTypeString
	case allInt:
		return domain.DTypeInteger
	case allFloat:
		return domain.DTypeFloat
	case allBool:
		return domain.DTypeBoolean
	case allTime:
		return domain.DTypeDatetime
	default:
		return domain.DTypeString
	}
}

func parsesAsTime(v string) bool {
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}
