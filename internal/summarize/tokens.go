package summarize

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// CountTokens estimates the token count of text using the cl100k_base
// encoding. If the tokenizer cannot be initialized (no cached BPE
// data), it falls back to the rough four-characters-per-token rule.
func CountTokens(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			log.WithError(err).Warn("tiktoken unavailable, using character estimate")
			return
		}
		encoding = enc
	})

	if encoding == nil {
		return len(text) / 4
	}
	return len(encoding.Encode(text, nil, nil))
}
