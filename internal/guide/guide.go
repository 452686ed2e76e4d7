// Package guide produces body descriptions and answers visitor questions
// through a text-generation backend, with static fallbacks.
package guide

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ali-sdg/cosmos-walker/internal/catalog"
	"github.com/ali-sdg/cosmos-walker/internal/logging"
)

const (
	// AnswerUnavailable is returned when the backend answered with nothing.
	AnswerUnavailable = "I can't answer that right now."

	// AnswerFallback is shown when asking failed outright.
	AnswerFallback = "Connection error. Please try again."

	// DefaultLanguage is the language descriptions and answers are written in.
	DefaultLanguage = "English"
)

// TextGenerator turns a prompt into text.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Service wraps a TextGenerator with the prompts and fallbacks of the info
// panel. It holds no mutable state and is safe for concurrent use.
type Service struct {
	gen      TextGenerator
	language string
	log      *logging.Logger
}

// NewService creates a guide. A nil logger discards output; an empty
// language uses DefaultLanguage.
func NewService(gen TextGenerator, language string, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Discard()
	}
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	return &Service{gen: gen, language: language, log: log}
}

// Language returns the answer language.
func (s *Service) Language() string { return s.language }

// DescriptionPrompt builds the prompt for a short scientific summary.
func DescriptionPrompt(b catalog.Body, language string) string {
	return fmt.Sprintf("Write a fascinating, scientific summary about %s (%s) in %s. "+
		"Keep it strictly scientific but engaging. Max 3 sentences.",
		b.Name, b.DisplayName, language)
}

// QuestionPrompt builds the prompt for answering a question about a body.
func QuestionPrompt(b catalog.Body, question, language string) string {
	return fmt.Sprintf("You are an astronomy expert. Answer this question in %s about %s: %q. "+
		"Keep the answer scientific, accurate, and concise (max 50 words).",
		language, b.DisplayName, question)
}

// Describe returns a generated description of b. It never fails: any error
// or empty response yields the catalog description.
func (s *Service) Describe(ctx context.Context, b catalog.Body) string {
	if s.gen == nil {
		return b.Description
	}
	text, err := s.gen.GenerateText(ctx, DescriptionPrompt(b, s.language))
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.Warn("description of %s failed: %v", b.ID, err)
		}
		return b.Description
	}
	if strings.TrimSpace(text) == "" {
		return b.Description
	}
	return text
}

// Ask answers a question about b. An empty response yields
// AnswerUnavailable; transport and API failures are returned so the caller
// can show AnswerFallback.
func (s *Service) Ask(ctx context.Context, b catalog.Body, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("empty question")
	}
	if s.gen == nil {
		return "", ErrNoAPIKey
	}
	text, err := s.gen.GenerateText(ctx, QuestionPrompt(b, question, s.language))
	if errors.Is(err, ErrEmptyResponse) {
		return AnswerUnavailable, nil
	}
	if err != nil {
		s.log.Error("question about %s failed: %v", b.ID, err)
		return "", fmt.Errorf("ask about %s: %w", b.ID, err)
	}
	if strings.TrimSpace(text) == "" {
		return AnswerUnavailable, nil
	}
	return text, nil
}
