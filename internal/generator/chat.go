package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"webnova-quiz-service/internal/domain"
)

const promptTemplate = `Generate exactly 5 multiple-choice questions about %s.

Difficulty Level: %d (1-5 scale)
User's Previous Score: %.0f%%

Adjust question difficulty:
- If lastScore < 60%%: Make easier (level 1-2)
- If lastScore 60-80%%: Keep moderate (level 2-3)
- If lastScore > 80%%: Make harder (level 3-4)

Requirements:
- Questions should progressively increase in difficulty
- Provide 4 plausible options (1 correct, 3 distractors)
- Include clear explanations for correct answers
- Topics should vary (not all on same subtopic)
- Make questions practical, not trivial

Return ONLY valid JSON (no markdown, no extra text):
{
  "questions": [
    {
      "question": "...",
      "options": ["A", "B", "C", "D"],
      "correctAnswer": "A",
      "explanation": "...",
      "difficulty": 2,
      "topic": "..."
    }
  ]
}`

// ChatConfig configures the chat-completions client.
type ChatConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat asks an OpenAI-compatible model for a quiz. One attempt per call.
type Chat struct {
	cfg    ChatConfig
	client *http.Client
	tracer trace.Tracer
	log    *zap.Logger
}

func NewChat(cfg ChatConfig, log *zap.Logger) *Chat {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Chat{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		tracer: otel.Tracer("webnova-quiz-service/generator"),
		log:    log,
	}
}

func (c *Chat) Generate(ctx context.Context, subject string, difficulty int, lastScore float64) ([]domain.Question, error) {
	if c.cfg.APIKey == "" {
		return nil, domain.ErrGeneratorUnconfigured
	}

	ctx, span := c.tracer.Start(ctx, "generator.chat",
		trace.WithAttributes(
			attribute.String("quiz.subject", subject),
			attribute.Int("quiz.difficulty", difficulty),
			attribute.String("ai.model", c.cfg.Model),
		))
	defer span.End()

	text, err := c.complete(ctx, fmt.Sprintf(promptTemplate, subject, difficulty, lastScore))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		c.log.Warn("quiz generation failed", zap.String("subject", subject), zap.Error(err))
		return nil, domain.Errorf(domain.KindGenerationFailed, "AI generation failed")
	}

	questions, err := ParseQuestions(text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid output")
		c.log.Warn("quiz generation returned invalid output", zap.String("subject", subject), zap.Error(err))
		return nil, err
	}
	return questions, nil
}

func (c *Chat) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You write multiple-choice quizzes and answer with JSON only."},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("AI API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("AI API returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
