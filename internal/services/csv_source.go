package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// csvRow is one data row of an import file, cells already trimmed.
type csvRow struct {
	Line  int
	Cells []string
}

// cell returns the i-th cell or "" when the row is short.
func (r csvRow) cell(i int) string {
	if i < len(r.Cells) {
		return r.Cells[i]
	}
	return ""
}

// streamRows reads comma-separated records from r and sends every record
// after the header on out. It returns when r is exhausted, on a read error,
// or when ctx is done. The caller owns out and closes it after streamRows returns.
func streamRows(ctx context.Context, r io.Reader, out chan<- csvRow) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				slog.WarnContext(ctx, "Skipping unreadable CSV row", "line", perr.Line, "error", perr.Err)
				header = false
				continue
			}
			return fmt.Errorf("read csv: %w", err)
		}
		if header {
			header = false
			continue
		}

		line, _ := reader.FieldPos(0)
		row := csvRow{Line: line, Cells: make([]string, len(record))}
		for i, c := range record {
			row.Cells[i] = strings.TrimSpace(c)
		}

		select {
		case out <- row:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
