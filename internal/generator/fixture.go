package generator

import (
	"context"

	"webnova-quiz-service/internal/domain"
)

// Fixture returns the same five questions for every request. It backs demo mode.
type Fixture struct{}

func (Fixture) Generate(_ context.Context, _ string, _ int, _ float64) ([]domain.Question, error) {
	return fixtureQuestions(), nil
}

func fixtureQuestions() []domain.Question {
	return []domain.Question{
		{
			Prompt:        "What is the time complexity of binary search?",
			Options:       []string{"O(n)", "O(n log n)", "O(log n)", "O(1)"},
			CorrectAnswer: "O(log n)",
			Explanation:   "Binary search halves the space each step.",
			Difficulty:    4,
			Topic:         "Algorithms",
		},
		{
			Prompt:        "Which is NOT a Python built-in?",
			Options:       []string{"len()", "append()", "type()", "range()"},
			CorrectAnswer: "append()",
			Explanation:   "append is a list method.",
			Difficulty:    3,
			Topic:         "Python",
		},
		{
			Prompt:        "What does PEP stand for?",
			Options:       []string{"Python Enhancement Proposal", "Python Easy Package", "Performance Eval Plan", "Package Entry Point"},
			CorrectAnswer: "Python Enhancement Proposal",
			Difficulty:    2,
			Topic:         "Python",
		},
		{
			Prompt:        "Select mutable type:",
			Options:       []string{"tuple", "str", "list", "frozenset"},
			CorrectAnswer: "list",
			Difficulty:    2,
			Topic:         "Python",
		},
		{
			Prompt:        "Which keyword for context managers?",
			Options:       []string{"with", "using", "do", "defer"},
			CorrectAnswer: "with",
			Difficulty:    2,
			Topic:         "Python",
		},
	}
}
