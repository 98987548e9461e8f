package assembler

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenCounter counts tokens with an OpenAI BPE encoding. The encoder
// is stateless after construction and safe for concurrent use.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the named encoding, cl100k_base for the
// embedding models this engine targets. Construction can fail when the
// encoding data cannot be loaded; callers should fall back to a nil
// counter rather than abort.
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}
	return &TiktokenCounter{enc: enc}, nil
}

// CountTokens returns the exact BPE token count of text.
func (t *TiktokenCounter) CountTokens(text string) (int, error) {
	return len(t.enc.Encode(text, nil, nil)), nil
}
