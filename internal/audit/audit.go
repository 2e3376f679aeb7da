// Package audit writes the per-run CSV log of classified notes.
package audit

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pbaille/noteorg/internal/domain"
)

// Header is the fixed column order of the audit log
var Header = []string{"filename", "decision", "explanation", "tags", "num_tokens"}

const timestampLayout = "2006-01-02_15-04-05"

// FileName returns the audit log name for a run started at startedAt
func FileName(startedAt time.Time) string {
	return "notes-metadata_" + startedAt.Format(timestampLayout) + ".csv"
}

// Path returns the audit log path inside dir for a run started at startedAt
func Path(dir string, startedAt time.Time) string {
	return filepath.Join(dir, FileName(startedAt))
}

// Row serializes a record in Header order
func Row(r domain.AuditRecord) ([]string, error) {
	if r.Filename == "" {
		return nil, errors.New("record has no filename")
	}
	if _, ok := domain.ParseDecision(string(r.Decision)); !ok {
		return nil, fmt.Errorf("record %s has invalid decision %q", r.Filename, r.Decision)
	}

	row := []string{
		r.Filename,
		string(r.Decision),
		r.Explanation,
		strings.Join(r.Tags, ","),
		strconv.Itoa(r.NumTokens),
	}
	for _, field := range row {
		if !utf8.ValidString(field) {
			return nil, fmt.Errorf("record %s has a field that is not valid UTF-8", r.Filename)
		}
	}
	return row, nil
}

// Write creates (or truncates) the CSV at path with a header row and one
// row per record. Records that cannot be serialized are logged and
// skipped; it returns the number of rows written.
func Write(path string, records []domain.AuditRecord, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create audit log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return 0, fmt.Errorf("write audit header: %w", err)
	}

	written := 0
	for _, record := range records {
		row, err := Row(record)
		if err == nil {
			err = w.Write(row)
		}
		if err != nil {
			logger.Warn("skipping audit row",
				zap.String("file", record.Filename),
				zap.Error(err),
			)
			continue
		}
		written++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return written, fmt.Errorf("flush audit log: %w", err)
	}
	if err := f.Close(); err != nil {
		return written, fmt.Errorf("close audit log: %w", err)
	}
	return written, nil
}
