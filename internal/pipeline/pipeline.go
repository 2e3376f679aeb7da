// Package pipeline walks a tree of notes, classifies each one and files
// it under keep/ or junk/ in the output directory.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pbaille/noteorg/internal/audit"
	"github.com/pbaille/noteorg/internal/domain"
	"github.com/pbaille/noteorg/internal/extract"
	"github.com/pbaille/noteorg/internal/logging"
	"github.com/pbaille/noteorg/internal/notefmt"
)

// Output buckets under the output directory
const (
	KeepDir = "keep"
	JunkDir = "junk"
)

// ErrInputNotFound is returned when the input directory is missing
var ErrInputNotFound = errors.New("input directory does not exist")

// Classifier decides the fate of one note. Implementations must not fail;
// they return a usable result even when the service is down.
type Classifier interface {
	Classify(ctx context.Context, note domain.Note) domain.ClassificationResult
}

// Recorder persists a finished run, e.g. to the run ledger
type Recorder interface {
	SaveRun(run *domain.Run) error
}

// Pipeline organizes notes. Runs are sequential; one note is fully
// written before the next is read.
type Pipeline struct {
	classifier Classifier
	recorder   Recorder
	logger     *zap.Logger
	now        func() time.Time
	extensions []string
	outputExt  string
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithRecorder stores every run through r
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithClock overrides time.Now for run timestamps
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithExtensions sets the input extensions considered notes
func WithExtensions(exts ...string) Option {
	return func(p *Pipeline) { p.extensions = exts }
}

// WithOutputExtension sets the extension of written documents
func WithOutputExtension(ext string) Option {
	return func(p *Pipeline) { p.outputExt = ext }
}

// New creates a Pipeline that classifies notes with c
func New(c Classifier, opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier: c,
		now:        time.Now,
		extensions: []string{".txt"},
		outputExt:  notefmt.DefaultExtension,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.OrNop(p.logger)
	return p
}

// FileResult is the terminal state of one discovered note
type FileResult struct {
	Source  string         `json:"source"`
	Target  string         `json:"target"`
	Outcome domain.Outcome `json:"outcome"`
	Err     error          `json:"-"`
}

// Report summarizes a run
type Report struct {
	Run   domain.Run   `json:"run"`
	Files []FileResult `json:"files"`
}

// Count returns how many notes ended in outcome
func (r *Report) Count(outcome domain.Outcome) int {
	n := 0
	for _, f := range r.Files {
		if f.Outcome == outcome {
			n++
		}
	}
	return n
}

// Run processes every note under inputDir into outputDir/keep and
// outputDir/junk. Notes whose target already exists in either bucket are
// skipped without classification. Per-note failures are logged and never
// stop the run; the returned error covers setup and the audit log only.
func (p *Pipeline) Run(ctx context.Context, inputDir, outputDir string) (*Report, error) {
	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, inputDir)
	}

	keepDir := filepath.Join(outputDir, KeepDir)
	junkDir := filepath.Join(outputDir, JunkDir)
	for _, dir := range []string{keepDir, junkDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	report := &Report{
		Run: domain.Run{
			ID:        uuid.New().String(),
			InputDir:  inputDir,
			OutputDir: outputDir,
			StartedAt: p.now(),
		},
	}
	logger := p.logger.With(zap.String("run", report.Run.ID))
	outputAbs, _ := filepath.Abs(outputDir)
	logger.Info("run started", zap.String("input", inputDir), zap.String("output", outputDir))

	walkErr := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("cannot walk path", zap.String("file", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			// an output tree nested in the input is never re-read
			if abs, _ := filepath.Abs(path); abs == outputAbs && path != inputDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !p.isNote(path) {
			return nil
		}

		result, record := p.processFile(ctx, path, keepDir, junkDir, logger)
		report.Files = append(report.Files, result)
		if record != nil {
			report.Run.Records = append(report.Run.Records, *record)
		}
		return nil
	})
	if walkErr != nil {
		logger.Error("walk stopped early", zap.Error(walkErr))
	}
	report.Run.NumRecords = len(report.Run.Records)

	var auditErr error
	if len(report.Run.Records) > 0 {
		path := audit.Path(keepDir, report.Run.StartedAt)
		if _, err := audit.Write(path, report.Run.Records, logger); err != nil {
			logger.Error("failed to write audit log", zap.String("path", path), zap.Error(err))
			auditErr = err
		} else {
			report.Run.AuditPath = path
		}
	}

	if p.recorder != nil {
		if err := p.recorder.SaveRun(&report.Run); err != nil {
			logger.Warn("failed to record run", zap.Error(err))
		}
	}

	logger.Info("run finished",
		zap.Int("kept", report.Count(domain.OutcomeKept)),
		zap.Int("trashed", report.Count(domain.OutcomeTrashed)),
		zap.Int("skipped", report.Count(domain.OutcomeSkipped)),
		zap.Int("failed", report.Count(domain.OutcomeFailed)),
		zap.String("audit", report.Run.AuditPath),
	)

	return report, auditErr
}

func (p *Pipeline) isNote(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range p.extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// processFile drives one note from discovery to a terminal outcome
func (p *Pipeline) processFile(ctx context.Context, path, keepDir, junkDir string, logger *zap.Logger) (FileResult, *domain.AuditRecord) {
	target := notefmt.TargetName(path, p.outputExt)
	res := FileResult{Source: path, Target: target}
	logger = logger.With(zap.String("file", path))

	fail := func(err error) (FileResult, *domain.AuditRecord) {
		logger.Error("failed to process note", zap.Error(err))
		res.Outcome = domain.OutcomeFailed
		res.Err = err
		return res, nil
	}

	keepPath := filepath.Join(keepDir, target)
	junkPath := filepath.Join(junkDir, target)

	done, err := anyExists(keepPath, junkPath)
	if err != nil {
		return fail(err)
	}
	if done {
		logger.Info("skipping note, output exists", zap.String("target", target))
		res.Outcome = domain.OutcomeSkipped
		return res, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fail(fmt.Errorf("stat note: %w", err))
	}
	content, err := extract.Read(path)
	if err != nil {
		return fail(err)
	}

	note := domain.Note{
		SourcePath: path,
		TargetName: target,
		Content:    content,
		ModifiedAt: info.ModTime(),
	}
	result := p.classifier.Classify(ctx, note)

	doc, err := notefmt.Assemble(notefmt.Normalize(content), result, note.ModifiedAt)
	if err != nil {
		return fail(err)
	}

	dest, outcome := keepPath, domain.OutcomeKept
	if result.Decision == domain.DecisionTrash {
		dest, outcome = junkPath, domain.OutcomeTrashed
	}
	if err := writeNew(dest, doc); err != nil {
		return fail(err)
	}

	logger.Info("note filed",
		zap.String("decision", string(result.Decision)),
		zap.String("explanation", result.Explanation),
		zap.String("target", dest),
	)

	res.Outcome = outcome
	return res, &domain.AuditRecord{
		Filename:    path,
		Decision:    result.Decision,
		Explanation: result.Explanation,
		Tags:        result.Tags,
		NumTokens:   result.TokenCount,
	}
}

func anyExists(paths ...string) (bool, error) {
	for _, p := range paths {
		_, err := os.Stat(p)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("check output: %w", err)
		}
	}
	return false, nil
}

// writeNew creates path with content, refusing to replace an existing file
func writeNew(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
