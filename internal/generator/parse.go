// Package generator produces quiz questions, either from an OpenAI-compatible
// chat-completions endpoint or from a fixed fixture set.
package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"webnova-quiz-service/internal/domain"
)

var validate = validator.New()

type generatedQuiz struct {
	Questions []generatedQuestion `json:"questions" validate:"required,len=5,dive"`
}

type generatedQuestion struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"len=4,dive,required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Explanation   *string  `json:"explanation" validate:"required"`
	Difficulty    int      `json:"difficulty" validate:"gte=0,lte=5"`
	Topic         string   `json:"topic"`
}

// ParseQuestions decodes model output into questions. When the text is not
// valid JSON, the span from the first '{' to the last '}' is tried once more.
func ParseQuestions(text string) ([]domain.Question, error) {
	var quiz generatedQuiz
	if err := json.Unmarshal([]byte(text), &quiz); err != nil {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start == -1 || end <= start {
			return nil, domain.Errorf(domain.KindGenerationFailed, "Invalid AI JSON response")
		}
		quiz = generatedQuiz{}
		if err := json.Unmarshal([]byte(text[start:end+1]), &quiz); err != nil {
			return nil, domain.Errorf(domain.KindGenerationFailed, "Invalid AI JSON response")
		}
	}
	return quiz.validated()
}

func (q generatedQuiz) validated() ([]domain.Question, error) {
	if err := validate.Struct(q); err != nil {
		return nil, domain.Errorf(domain.KindGenerationFailed, "%s", describe(err))
	}

	questions := make([]domain.Question, len(q.Questions))
	for i, g := range q.Questions {
		question := domain.Question{
			Prompt:        g.Question,
			Options:       g.Options,
			CorrectAnswer: g.CorrectAnswer,
			Explanation:   *g.Explanation,
			Difficulty:    g.Difficulty,
			Topic:         g.Topic,
		}
		if !question.HasOption(question.CorrectAnswer) {
			return nil, domain.Errorf(domain.KindGenerationFailed, "Question %d: correct answer is not one of the options", i+1)
		}
		questions[i] = question
	}
	return questions, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid question format"
	}
	fe := verrs[0]
	switch {
	case fe.Field() == "Questions" && (fe.Tag() == "len" || fe.Tag() == "required"):
		return fmt.Sprintf("AI must return exactly %d questions", domain.QuestionsPerQuiz)
	case fe.Field() == "Options" && fe.Tag() == "len":
		return fmt.Sprintf("Each question must have %d options", domain.OptionsPerQuestion)
	default:
		return "Invalid question format"
	}
}
