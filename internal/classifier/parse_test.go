package classifier

import (
	"strings"
	"testing"

	"github.com/pbaille/noteorg/internal/domain"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		decision    domain.Decision
		explanation string
		tags        []string
		unknown     bool
	}{
		{
			name:        "well formed",
			reply:       "decision: keep\nexplanation: useful\ntags: work, idea\n",
			decision:    domain.DecisionKeep,
			explanation: "useful",
			tags:        []string{"work", "idea"},
		},
		{
			name:     "no recognized lines",
			reply:    "I think this note is great.\nCheers",
			decision: domain.DecisionKeep,
			tags:     []string{},
		},
		{
			name:        "trash with empty tags",
			reply:       "decision: trash\nexplanation: ephemeral\ntags:\n",
			decision:    domain.DecisionTrash,
			explanation: "ephemeral",
			tags:        []string{},
		},
		{
			name:        "case insensitive prefixes and values",
			reply:       "Decision: TRASH\r\nEXPLANATION:  Old Reminder  \r\nTags: Link , ,to-read,\r\n",
			decision:    domain.DecisionTrash,
			explanation: "Old Reminder",
			tags:        []string{"Link", "to-read"},
		},
		{
			name:        "last line wins",
			reply:       "decision: trash\nexplanation: first\ntags: a\ndecision: keep\nexplanation: second\ntags: b, c\n",
			decision:    domain.DecisionKeep,
			explanation: "second",
			tags:        []string{"b", "c"},
		},
		{
			name:        "unrecognized decision reads as keep",
			reply:       "decision: maybe\nexplanation: unsure\n",
			decision:    domain.DecisionKeep,
			explanation: "unsure",
			tags:        []string{},
			unknown:     true,
		},
		{
			name:     "empty decision value",
			reply:    "decision:\n",
			decision: domain.DecisionKeep,
			tags:     []string{},
			unknown:  true,
		},
		{
			name:        "indented lines are ignored",
			reply:       "  decision: trash\nexplanation: has: colons: inside\n",
			decision:    domain.DecisionKeep,
			explanation: "has: colons: inside",
			tags:        []string{},
		},
		{
			name:     "empty reply",
			reply:    "",
			decision: domain.DecisionKeep,
			tags:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseResponse(tt.reply)
			if got.Result.Decision != tt.decision {
				t.Errorf("decision = %q, want %q", got.Result.Decision, tt.decision)
			}
			if got.Result.Explanation != tt.explanation {
				t.Errorf("explanation = %q, want %q", got.Result.Explanation, tt.explanation)
			}
			if got.Result.Tags == nil {
				t.Error("tags should never be nil")
			}
			if strings.Join(got.Result.Tags, "|") != strings.Join(tt.tags, "|") {
				t.Errorf("tags = %q, want %q", got.Result.Tags, tt.tags)
			}
			if got.UnknownDecision() != tt.unknown {
				t.Errorf("UnknownDecision() = %v, want %v", got.UnknownDecision(), tt.unknown)
			}
		})
	}
}
