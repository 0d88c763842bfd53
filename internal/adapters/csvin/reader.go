// Package csvin turns an uploaded CSV into a domain.Dataset.
package csvin

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"

	"review_insights/internal/domain"
)

var ErrEmpty = errors.New("csv: no header row")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read parses a whole CSV stream. Input that is not valid UTF-8 is decoded as
// ISO-8859-1 instead. Empty cells become nil, like any other missing value.
func Read(r io.Reader) (domain.Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read csv: %w", err)
	}
	text, err := decode(raw)
	if err != nil {
		return domain.Dataset{}, err
	}

	cr := csv.NewReader(bytes.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.Dataset{}, ErrEmpty
	}
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("parse csv header: %w", err)
	}

	ds := domain.Dataset{Columns: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Dataset{}, fmt.Errorf("parse csv row %d: %w", len(ds.Rows)+1, err)
		}
		row := make(map[string]any, len(header))
		for i, col := range header {
			if _, dup := row[col]; dup {
				continue
			}
			if i >= len(rec) || rec[i] == "" {
				row[col] = nil
				continue
			}
			row[col] = rec[i]
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

func decode(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode latin-1: %w", err)
	}
	log.Debug().Int("bytes", len(raw)).Msg("csv is not utf-8, decoded as latin-1")
	return out, nil
}
