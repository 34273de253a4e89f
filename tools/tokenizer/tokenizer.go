package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding matches OpenAI's chat models.
const DefaultEncoding = "cl100k_base"

// Counter converts text to a token count using a fixed encoding.
type Counter struct {
	enc *tiktoken.Tiktoken
}

func NewCounter(encoding string) (*Counter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tokenizer init: %w", err)
	}
	return &Counter{enc: enc}, nil
}

func (c *Counter) Count(text string) (int, error) {
	if c == nil || c.enc == nil {
		return 0, fmt.Errorf("tokenizer not initialised")
	}
	return len(c.enc.Encode(text, nil, nil)), nil
}
