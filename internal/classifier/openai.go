package classifier

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pbaille/noteorg/internal/config"
)

// OpenAI streams chat completions from the OpenAI API
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAI creates a Streamer from the API settings in cfg
func NewOpenAI(cfg *config.Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, config.ErrMissingAPIKey
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.OrgID = cfg.Organization
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAI{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Stream opens a streamed chat completion with system and user messages
func (o *OpenAI) Stream(ctx context.Context, system, user string) (Stream, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
		TopP:        1,
		Stream:      true,
	}

	stream, err := o.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create chat completion stream: %w", err)
	}
	return &openAIStream{stream: stream}, nil
}

type openAIStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openAIStream) Recv() (string, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (s *openAIStream) Close() error {
	return s.stream.Close()
}
