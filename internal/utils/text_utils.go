package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// TextProcessor prepares raw email text before it is handed to an LLM
// provider: size capping and UTF-8 cleanup.
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{logger: logger}
}

// ProcessText caps text at maxSize bytes and strips invalid UTF-8. A
// maxSize of zero or less means no size limit.
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	if maxSize > 0 && len(text) > maxSize {
		truncated := text[:maxSize]
		// Back off to a rune boundary
		for len(truncated) > 0 && !utf8.ValidString(truncated) {
			truncated = truncated[:len(truncated)-1]
		}
		tp.logger.Debug("Email body truncated",
			zap.Int("original_size", len(text)),
			zap.Int("truncated_size", len(truncated)),
			zap.Int("max_size", maxSize))
		text = truncated + "\n[... Content truncated due to size limits ...]"
	}
	return strings.ToValidUTF8(text, "")
}
