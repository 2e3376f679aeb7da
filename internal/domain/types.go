package domain

import "time"

// Decision is the classifier's retention verdict for a note
type Decision string

const (
	DecisionKeep  Decision = "keep"
	DecisionTrash Decision = "trash"
)

// ParseDecision maps a raw decision token to a Decision.
// Anything other than "keep" or "trash" reports ok=false.
func ParseDecision(token string) (Decision, bool) {
	switch Decision(token) {
	case DecisionKeep:
		return DecisionKeep, true
	case DecisionTrash:
		return DecisionTrash, true
	}
	return DecisionKeep, false
}

// Note is a single input file discovered during a run
type Note struct {
	SourcePath string    `json:"source_path"`
	TargetName string    `json:"target_name"`
	Content    string    `json:"-"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ClassificationResult is the parsed classifier reply for one note
type ClassificationResult struct {
	Decision    Decision `json:"decision"`
	Explanation string   `json:"explanation"`
	Tags        []string `json:"tags"`
	TokenCount  int      `json:"token_count"`
}

// Outcome is the terminal state of a note within a run
type Outcome string

const (
	OutcomeSkipped Outcome = "skipped"
	OutcomeKept    Outcome = "kept"
	OutcomeTrashed Outcome = "trashed"
	OutcomeFailed  Outcome = "failed"
)

// AuditRecord is one row of the run's audit log
type AuditRecord struct {
	Filename    string   `json:"filename"`
	Decision    Decision `json:"decision"`
	Explanation string   `json:"explanation"`
	Tags        []string `json:"tags"`
	NumTokens   int      `json:"num_tokens"`
}

// Run describes one pipeline invocation
type Run struct {
	ID         string        `json:"id"`
	InputDir   string        `json:"input_dir"`
	OutputDir  string        `json:"output_dir"`
	StartedAt  time.Time     `json:"started_at"`
	AuditPath  string        `json:"audit_path,omitempty"`
	Records    []AuditRecord `json:"records,omitempty"`
	NumRecords int           `json:"num_records"`
}
