package classifier

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

// DefaultPolicy is the instruction text sent as the system message.
// It holds the retention and tagging rules; the pipeline never reads it.
//
//go:embed policy.txt
var DefaultPolicy string

const userPromptPrefix = "Please analyze the note. Text:\n\n"

// UserPrompt wraps raw note content into the user message
func UserPrompt(content string) string {
	return userPromptPrefix + content
}

// LoadPolicy returns the policy at path, or DefaultPolicy when path is empty
func LoadPolicy(path string) (string, error) {
	if path == "" {
		return DefaultPolicy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read policy: %w", err)
	}

	policy := strings.TrimSpace(string(data))
	if policy == "" {
		return "", fmt.Errorf("policy file %s is empty", path)
	}
	return policy, nil
}
