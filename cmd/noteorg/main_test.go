package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pbaille/noteorg/internal/config"
	"github.com/pbaille/noteorg/internal/domain"
	"github.com/pbaille/noteorg/internal/pipeline"
	"github.com/pbaille/noteorg/internal/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRequiresFlags(t *testing.T) {
	if _, err := execute(t, "-i", t.TempDir()); err == nil {
		t.Error("expected error without --output")
	}
	if _, err := execute(t, "-o", t.TempDir()); err == nil {
		t.Error("expected error without --input")
	}
}

func TestRootMissingInput(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "sk-test")
	dir := t.TempDir()
	output := filepath.Join(dir, "out")

	_, err := execute(t, "-i", filepath.Join(dir, "missing"), "-o", output, "--no-ledger")
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("error = %v, want missing input directory", err)
	}
}

func TestRootRequiresAPIKey(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")
	dir := t.TempDir()

	_, err := execute(t, "-i", dir, "-o", filepath.Join(dir, "out"), "--no-ledger")
	if err == nil || !strings.Contains(err.Error(), config.EnvAPIKey) {
		t.Errorf("error = %v, want missing API key", err)
	}
}

func TestHistoryAndShow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger", "noteorg.db")

	out, err := execute(t, "history", "--db", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No runs yet") {
		t.Errorf("history on an empty ledger = %q", out)
	}

	s, err := store.New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	run := &domain.Run{
		ID:        "1234567890abcdef",
		InputDir:  "/notes",
		OutputDir: "/sorted",
		StartedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Records: []domain.AuditRecord{
			{Filename: "/notes/plan.txt", Decision: domain.DecisionKeep, Explanation: "project ref", Tags: []string{"work", "project"}},
			{Filename: "/notes/milk.txt", Decision: domain.DecisionTrash, Explanation: "ephemeral"},
		},
	}
	if err := s.SaveRun(run); err != nil {
		t.Fatal(err)
	}
	s.Close()

	out, err = execute(t, "history", "--db", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "12345678") || !strings.Contains(out, "2 notes") {
		t.Errorf("history = %q", out)
	}

	out, err = execute(t, "show", "1234", "--db", dbPath, "--decision", "keep")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "/notes/plan.txt  [work, project]") || strings.Contains(out, "milk.txt") {
		t.Errorf("show = %q", out)
	}

	if _, err := execute(t, "show", "ffff", "--db", dbPath); err == nil {
		t.Error("expected error for an unknown run")
	}
}

func TestPrintReport(t *testing.T) {
	report := &pipeline.Report{
		Run: domain.Run{AuditPath: "/out/keep/notes-metadata_2024-01-02_03-04-05.csv"},
		Files: []pipeline.FileResult{
			{Source: "a.txt", Outcome: domain.OutcomeKept},
			{Source: "b.txt", Outcome: domain.OutcomeTrashed},
			{Source: "c.txt", Outcome: domain.OutcomeSkipped},
		},
	}

	var buf bytes.Buffer
	printReport(&buf, report)

	want := "Kept 1, trashed 1, skipped 1, failed 0.\nWrote /out/keep/notes-metadata_2024-01-02_03-04-05.csv\n"
	if buf.String() != want {
		t.Errorf("printReport() = %q, want %q", buf.String(), want)
	}
}
