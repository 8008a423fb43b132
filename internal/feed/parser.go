// Package feed implements tab-separated product feed parsing.
package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/feedtailor/feedtailor/internal/common"
	"github.com/feedtailor/feedtailor/internal/model"
)

// Parser implements TSV feed file parsing. The header row names the
// columns; every cell is kept as a string with no type inference.
type Parser struct{}

// NewParser creates a new feed parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile parses a TSV feed and returns its table. Rows whose field
// count differs from the header are skipped and counted; the load only
// fails when the input is unreadable or the header itself is unusable.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := csv.NewReader(reader)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("feed is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read feed header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var rows [][]string
	var skipped int
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// encoding/csv reports bare-quote and similar
			// malformations per row; treat them like ragged rows.
			skipped++
			continue
		}
		if len(record) != len(header) {
			skipped++
			continue
		}
		rows = append(rows, record)
	}

	if skipped > 0 {
		slog.Warn("Skipped malformed feed rows",
			"skipped", skipped,
			"kept", len(rows))
	}
	slog.Info("Parsed feed",
		"columns", len(header),
		"rows", len(rows))

	return model.NewTable(header, rows), nil
}

// ParseFilePath opens and parses the feed at path, wrapping any
// failure as a fatal load error.
func (p *Parser) ParseFilePath(ctx context.Context, path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewLoadError(path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	table, err := p.ParseFile(ctx, f)
	if err != nil {
		return nil, common.NewLoadError(path, err)
	}
	return table, nil
}

func validateHeader(header []string) error {
	if len(header) == 0 {
		return fmt.Errorf("feed header has no columns")
	}
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if name == "" {
			return fmt.Errorf("feed header has an empty column name")
		}
		if seen[name] {
			return fmt.Errorf("feed header has duplicate column %q", name)
		}
		seen[name] = true
	}
	return nil
}
