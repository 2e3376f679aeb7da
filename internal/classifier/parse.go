package classifier

import (
	"strings"

	"github.com/pbaille/noteorg/internal/domain"
)

const (
	decisionPrefix    = "decision:"
	explanationPrefix = "explanation:"
	tagsPrefix        = "tags:"
)

// Reply is a parsed classifier response
type Reply struct {
	Result domain.ClassificationResult

	// DecisionToken is the lower-cased value of the last decision line.
	// DecisionSeen is false when the reply had no decision line at all.
	DecisionToken string
	DecisionSeen  bool
}

// UnknownDecision reports a decision line whose value was neither keep nor trash
func (r Reply) UnknownDecision() bool {
	if !r.DecisionSeen {
		return false
	}
	_, ok := domain.ParseDecision(r.DecisionToken)
	return !ok
}

// ParseResponse reads the line-oriented reply format:
//
//	decision: keep|trash
//	explanation: free text
//	tags: a, b, c
//
// Prefixes match case-insensitively at the start of a line, later lines
// override earlier ones and anything else is ignored. Missing lines leave
// the defaults: keep, empty explanation, no tags. An unrecognized decision
// also reads as keep.
func ParseResponse(reply string) Reply {
	r := Reply{
		Result: domain.ClassificationResult{
			Decision: domain.DecisionKeep,
			Tags:     []string{},
		},
	}

	for line := range strings.Lines(reply) {
		line = strings.TrimRight(line, "\r\n")

		if rest, ok := cutPrefixFold(line, decisionPrefix); ok {
			r.DecisionToken = strings.ToLower(strings.TrimSpace(rest))
			r.DecisionSeen = true
			r.Result.Decision, _ = domain.ParseDecision(r.DecisionToken)
		} else if rest, ok := cutPrefixFold(line, explanationPrefix); ok {
			r.Result.Explanation = strings.TrimSpace(rest)
		} else if rest, ok := cutPrefixFold(line, tagsPrefix); ok {
			r.Result.Tags = splitTags(rest)
		}
	}

	return r
}

func splitTags(s string) []string {
	tags := []string{}
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}
