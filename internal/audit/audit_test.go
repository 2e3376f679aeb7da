package audit

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pbaille/noteorg/internal/domain"
)

func TestFileName(t *testing.T) {
	started := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := FileName(started); got != "notes-metadata_2024-01-02_03-04-05.csv" {
		t.Errorf("FileName() = %q", got)
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	records := []domain.AuditRecord{
		{Filename: "in/plan.txt", Decision: domain.DecisionKeep, Explanation: "project ref, with comma", Tags: []string{"work", "project"}, NumTokens: 42},
		{Filename: "in/note1.txt", Decision: domain.DecisionTrash, Explanation: "ephemeral", NumTokens: 7},
	}

	n, err := Write(path, records, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("wrote %d rows, want 2", n)
	}

	rows := readCSV(t, path)
	want := [][]string{
		{"filename", "decision", "explanation", "tags", "num_tokens"},
		{"in/plan.txt", "keep", "project ref, with comma", "work,project", "42"},
		{"in/note1.txt", "trash", "ephemeral", "", "7"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d: %v", len(rows), len(want), rows)
	}
	for i := range want {
		if strings.Join(rows[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}
}

func TestWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	if err := os.WriteFile(path, []byte("stale,data\nmore,stale\nrows,here\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Write(path, []domain.AuditRecord{{Filename: "a.txt", Decision: domain.DecisionKeep}}, nil); err != nil {
		t.Fatal(err)
	}
	if rows := readCSV(t, path); len(rows) != 2 || rows[0][0] != "filename" {
		t.Errorf("existing file not replaced: %v", rows)
	}
}

func TestWriteSkipsBadRows(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	path := filepath.Join(t.TempDir(), "audit.csv")
	records := []domain.AuditRecord{
		{Filename: "", Decision: domain.DecisionKeep},
		{Filename: "ok.txt", Decision: domain.DecisionKeep},
		{Filename: "bad.txt", Decision: "maybe"},
		{Filename: "enc.txt", Decision: domain.DecisionKeep, Explanation: string([]byte{0xff})},
	}

	n, err := Write(path, records, zap.New(core))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("wrote %d rows, want 1", n)
	}
	if rows := readCSV(t, path); len(rows) != 2 || rows[1][0] != "ok.txt" {
		t.Errorf("unexpected rows: %v", rows)
	}
	if got := logs.FilterMessage("skipping audit row").Len(); got != 3 {
		t.Errorf("logged %d skipped rows, want 3", got)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}
