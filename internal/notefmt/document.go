package notefmt

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pbaille/noteorg/internal/domain"
)

const (
	frontmatterDelimiter = "---\n"
	dateLayout           = "2006-01-02"
)

// Assemble builds the document written for a note. Trashed notes are the
// normalized body alone; kept notes get a frontmatter block with their
// tags and original date, a blank line, then the body.
func Assemble(body string, result domain.ClassificationResult, modified time.Time) (string, error) {
	if result.Decision == domain.DecisionTrash {
		return body, nil
	}

	header, err := Frontmatter(result.Tags, modified)
	if err != nil {
		return "", err
	}
	return header + "\n" + body, nil
}

// Frontmatter renders the delimited YAML header for a kept note.
// Tag order is preserved; an empty tag list renders as [].
func Frontmatter(tags []string, modified time.Time) (string, error) {
	tagList := &yaml.Node{Kind: yaml.SequenceNode}
	if len(tags) == 0 {
		tagList.Style = yaml.FlowStyle
	}
	for _, tag := range tags {
		tagList.Content = append(tagList.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: tag,
		})
	}

	header := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "tags"},
			tagList,
			{Kind: yaml.ScalarNode, Value: "date"},
			{Kind: yaml.ScalarNode, Value: modified.Format(dateLayout)},
		},
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelimiter)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(header); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}

	buf.WriteString(frontmatterDelimiter)
	return buf.String(), nil
}
