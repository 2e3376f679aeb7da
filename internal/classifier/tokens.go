package classifier

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// Tiktoken counts tokens with the model's BPE encoding
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the encoding for model, falling back to cl100k_base
// for models the tokenizer does not know yet
func NewTiktoken(model string) (*Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("load encoding for %s: %w", model, err)
		}
	}
	return &Tiktoken{enc: enc}, nil
}

// Count returns the number of tokens in text
func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}
