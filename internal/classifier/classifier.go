// Package classifier asks an external language model whether a note is
// worth keeping and which tags it deserves.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/pbaille/noteorg/internal/domain"
	"github.com/pbaille/noteorg/internal/logging"
)

// FallbackExplanation is recorded when the classification exchange fails
const FallbackExplanation = "Error in explanation"

// Fallback is the result used when classification fails. Notes are kept
// rather than lost when the service misbehaves.
func Fallback() domain.ClassificationResult {
	return domain.ClassificationResult{
		Decision:    domain.DecisionKeep,
		Explanation: FallbackExplanation,
		Tags:        []string{"misc"},
	}
}

// Stream yields reply fragments until Recv returns io.EOF
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Streamer opens one streamed exchange with the classification service
type Streamer interface {
	Stream(ctx context.Context, system, user string) (Stream, error)
}

// TokenCounter measures prompt size for the audit log
type TokenCounter interface {
	Count(text string) int
}

// Classifier turns note content into a ClassificationResult
type Classifier struct {
	streamer Streamer
	policy   string
	counter  TokenCounter
	progress io.Writer
	logger   *zap.Logger
}

// Option configures a Classifier
type Option func(*Classifier)

// WithPolicy replaces DefaultPolicy as the system message
func WithPolicy(policy string) Option {
	return func(c *Classifier) { c.policy = policy }
}

// WithTokenCounter sets the counter used for TokenCount
func WithTokenCounter(counter TokenCounter) Option {
	return func(c *Classifier) { c.counter = counter }
}

// WithProgress echoes reply fragments to w as they arrive
func WithProgress(w io.Writer) Option {
	return func(c *Classifier) { c.progress = w }
}

// WithLogger sets the logger that receives classification failures
func WithLogger(logger *zap.Logger) Option {
	return func(c *Classifier) { c.logger = logger }
}

// New creates a Classifier on top of streamer
func New(streamer Streamer, opts ...Option) *Classifier {
	c := &Classifier{
		streamer: streamer,
		policy:   DefaultPolicy,
		progress: io.Discard,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger)
	if c.progress == nil {
		c.progress = io.Discard
	}
	return c
}

// Classify sends the raw note content to the service and parses the reply.
// It never fails: any error in the exchange is logged and Fallback is
// returned.
func (c *Classifier) Classify(ctx context.Context, note domain.Note) domain.ClassificationResult {
	logger := c.logger.With(zap.String("file", note.SourcePath))
	prompt := UserPrompt(note.Content)

	tokens := 0
	if c.counter != nil {
		tokens = c.counter.Count(prompt)
	}

	reply, err := c.collect(ctx, prompt)
	if err != nil {
		logger.Warn("classification failed, keeping note",
			zap.Int("num_tokens", tokens),
			zap.Error(err),
		)
		result := Fallback()
		result.TokenCount = tokens
		return result
	}

	parsed := ParseResponse(reply)
	if parsed.UnknownDecision() {
		logger.Warn("unrecognized decision, keeping note",
			zap.String("decision", parsed.DecisionToken),
		)
	}

	logger.Debug("classified",
		zap.String("decision", string(parsed.Result.Decision)),
		zap.String("explanation", parsed.Result.Explanation),
		zap.Strings("tags", parsed.Result.Tags),
		zap.Int("num_tokens", tokens),
	)

	result := parsed.Result
	result.TokenCount = tokens
	return result
}

// collect drains one streamed exchange into the complete reply
func (c *Classifier) collect(ctx context.Context, prompt string) (string, error) {
	if c.streamer == nil {
		return "", errors.New("no classification service configured")
	}

	stream, err := c.streamer.Stream(ctx, c.policy, prompt)
	if err != nil {
		return "", fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read stream: %w", err)
		}
		sb.WriteString(fragment)
		io.WriteString(c.progress, fragment)
	}
	io.WriteString(c.progress, "\n")

	reply := sb.String()
	if strings.TrimSpace(reply) == "" {
		return "", errors.New("empty response")
	}
	return reply, nil
}
