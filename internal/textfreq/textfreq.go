// Package textfreq turns free text into token frequencies for word clouds.
package textfreq

import (
	"strings"

	apperrors "chartsvc/internal/errors"
	"chartsvc/internal/stats"
)

// TokenizeAndCount splits text on whitespace and counts tokens. Tokens are
// case-sensitive and keep their punctuation.
func TokenizeAndCount(text string) (*stats.FrequencyMap, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil, apperrors.NewEmptyInputError("No words to render: the text is empty")
	}
	c := stats.NewCounter()
	for _, tok := range tokens {
		c.Add(tok)
	}
	return c.Freeze(), nil
}
