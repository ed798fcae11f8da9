package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"skeletonkey/internal/core"
)

func TestWriteCSV(t *testing.T) {
	records := []core.Transaction{
		{
			ID:          "t1",
			Date:        core.NewDate(2026, 3, 14),
			Description: "CHECKERS SIXTY60 SANDTON",
			Merchant:    "Checkers Sixty60",
			Amount:      core.Money{Cents: -45675},
			Category:    "Groceries",
			Account:     "Absa Cheque",
			Note:        "weekly shop",
		},
		{
			ID:          "t2",
			Description: "SALARY",
			Amount:      core.Money{Cents: 3500000},
			IsRecurring: true,
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}

	if rows[0][0] != "id" || rows[0][4] != "amount" {
		t.Fatalf("unexpected header: %v", rows[0])
	}

	first := rows[1]
	if first[1] != "2026-03-14" {
		t.Fatalf("unexpected date: %q", first[1])
	}
	if first[4] != "-R456.75" {
		t.Fatalf("unexpected formatted amount: %q", first[4])
	}
	if first[5] != "-45675" {
		t.Fatalf("unexpected raw cents: %q", first[5])
	}

	second := rows[2]
	if second[1] != "" {
		t.Fatalf("zero date must render empty, got %q", second[1])
	}
	if second[8] != "true" {
		t.Fatalf("recurring flag not exported: %v", second)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	out := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(out, "id,date,description") {
		t.Fatalf("expected a bare header, got %q", out)
	}
	if strings.Count(out, "\n") != 0 {
		t.Fatalf("expected a single line, got %q", out)
	}
}
