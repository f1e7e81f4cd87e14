package services

import (
	"context"
	"strings"
	"testing"
)

func collectRows(t *testing.T, input string) []csvRow {
	t.Helper()
	out := make(chan csvRow)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		errc <- streamRows(context.Background(), strings.NewReader(input), out)
	}()
	var rows []csvRow
	for r := range out {
		rows = append(rows, r)
	}
	if err := <-errc; err != nil {
		t.Fatalf("streamRows: %v", err)
	}
	return rows
}

func TestStreamRowsSkipsHeaderAndTrims(t *testing.T) {
	rows := collectRows(t, "title,type,value,category\n  Rent , outcome ,1200,  Housing \n\n\"Quoted, title\",income,1,Job\n")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	want := []string{"Rent", "outcome", "1200", "Housing"}
	for i, w := range want {
		if rows[0].cell(i) != w {
			t.Errorf("cell %d = %q, want %q", i, rows[0].cell(i), w)
		}
	}
	if rows[0].Line != 2 {
		t.Errorf("line = %d, want 2", rows[0].Line)
	}
	if rows[1].cell(0) != "Quoted, title" {
		t.Errorf("quoted cell = %q", rows[1].cell(0))
	}
}

func TestStreamRowsEmptyInput(t *testing.T) {
	if rows := collectRows(t, ""); len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestStreamRowsStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := make(chan csvRow) // never read
	err := streamRows(ctx, strings.NewReader("h\na\nb\n"), out)
	if err == nil {
		t.Fatal("expected context error")
	}
}

func TestCsvRowCellShort(t *testing.T) {
	r := csvRow{Cells: []string{"a"}}
	if r.cell(3) != "" {
		t.Fatal("expected empty cell for short row")
	}
}
