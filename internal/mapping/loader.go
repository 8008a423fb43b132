package mapping

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/feedtailor/feedtailor/internal/common"
)

// Required mapping file columns, matched case-insensitively.
const (
	ColumnProductColour = "product_colour"
	ColumnGenericColour = "generic_colour"
)

// Load parses a mapping CSV. The header must contain product_colour
// and generic_colour in any casing; extra columns are ignored. Cell
// values are normalized, duplicate keys keep their first occurrence.
func Load(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &common.SchemaError{Missing: []string{ColumnProductColour, ColumnGenericColour}}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	productIdx, genericIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case ColumnProductColour:
			if productIdx < 0 {
				productIdx = i
			}
		case ColumnGenericColour:
			if genericIdx < 0 {
				genericIdx = i
			}
		}
	}
	var missing []string
	if productIdx < 0 {
		missing = append(missing, ColumnProductColour)
	}
	if genericIdx < 0 {
		missing = append(missing, ColumnGenericColour)
	}
	if len(missing) > 0 {
		return nil, &common.SchemaError{Missing: missing}
	}

	table := NewTable()
	var dropped int
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read mapping row: %w", err)
		}
		if productIdx >= len(record) || genericIdx >= len(record) {
			dropped++
			continue
		}
		if !table.Add(record[productIdx], record[genericIdx]) {
			dropped++
		}
	}

	if dropped > 0 {
		slog.Debug("Dropped mapping rows",
			"dropped", dropped,
			"kept", table.Len())
	}
	return table, nil
}

// LoadFile opens and parses the mapping at path. Read and parse
// failures become fatal load errors; a missing required column stays a
// schema error carrying the path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewLoadError(path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	table, err := Load(f)
	if err != nil {
		var schemaErr *common.SchemaError
		if errors.As(err, &schemaErr) {
			schemaErr.Path = path
			return nil, schemaErr
		}
		return nil, common.NewLoadError(path, err)
	}

	slog.Info("Loaded colour mapping",
		"path", path,
		"entries", table.Len())
	return table, nil
}
