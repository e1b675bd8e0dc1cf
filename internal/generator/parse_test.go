package generator

import (
	"encoding/json"
	"testing"

	"webnova-quiz-service/internal/domain"
)

func fixtureJSON(t *testing.T) string {
	t.Helper()
	type q struct {
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correctAnswer"`
		Explanation   string   `json:"explanation"`
		Difficulty    int      `json:"difficulty"`
		Topic         string   `json:"topic"`
	}
	var out struct {
		Questions []q `json:"questions"`
	}
	for _, f := range fixtureQuestions() {
		out.Questions = append(out.Questions, q{f.Prompt, f.Options, f.CorrectAnswer, f.Explanation, f.Difficulty, f.Topic})
	}
	raw, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return string(raw)
}

func TestParseQuestionsStrict(t *testing.T) {
	questions, err := ParseQuestions(fixtureJSON(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(questions) != domain.QuestionsPerQuiz {
		t.Fatalf("expected %d questions, got %d", domain.QuestionsPerQuiz, len(questions))
	}
	if questions[0].CorrectAnswer != "O(log n)" {
		t.Fatalf("unexpected answer %q", questions[0].CorrectAnswer)
	}
	if questions[0].Prompt != "What is the time complexity of binary search?" {
		t.Fatalf("unexpected prompt %q", questions[0].Prompt)
	}
	if questions[2].Explanation != "" {
		t.Fatalf("expected empty explanation to survive, got %q", questions[2].Explanation)
	}
}

func TestParseQuestionsSalvagesEmbeddedObject(t *testing.T) {
	text := "Sure! Here is your quiz:\n```json\n" + fixtureJSON(t) + "\n```\nGood luck."
	questions, err := ParseQuestions(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(questions) != domain.QuestionsPerQuiz {
		t.Fatalf("expected %d questions, got %d", domain.QuestionsPerQuiz, len(questions))
	}
}

func TestParseQuestionsRejects(t *testing.T) {
	cases := map[string]string{
		"no json":         "I cannot help with that.",
		"broken salvage":  "prefix { not json } suffix",
		"missing key":     `{"quizzes": []}`,
		"too few":         `{"questions": [{"question": "q", "options": ["a","b","c","d"], "correctAnswer": "a", "explanation": ""}]}`,
		"three options":   replaceFirstOptions(t, `["a","b","c"]`),
		"no explanation":  `{"questions": [` + repeat(`{"question":"q","options":["a","b","c","d"],"correctAnswer":"a"}`, 5) + `]}`,
		"answer not held": `{"questions": [` + repeat(`{"question":"q","options":["a","b","c","d"],"correctAnswer":"z","explanation":""}`, 5) + `]}`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseQuestions(text)
			if err == nil {
				t.Fatalf("expected rejection")
			}
			if domain.KindOf(err) != domain.KindGenerationFailed {
				t.Fatalf("expected generation failure, got %v", err)
			}
		})
	}
}

func TestParseQuestionsMessages(t *testing.T) {
	_, err := ParseQuestions(`{"questions": []}`)
	if err == nil || err.Error() != "AI must return exactly 5 questions" {
		t.Fatalf("unexpected error %v", err)
	}

	_, err = ParseQuestions(replaceFirstOptions(t, `["a","b"]`))
	if err == nil || err.Error() != "Each question must have 4 options" {
		t.Fatalf("unexpected error %v", err)
	}
}

func replaceFirstOptions(t *testing.T, options string) string {
	t.Helper()
	var doc map[string][]map[string]json.RawMessage
	if err := json.Unmarshal([]byte(fixtureJSON(t)), &doc); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	doc["questions"][0]["options"] = json.RawMessage(options)
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return string(raw)
}

func repeat(item string, n int) string {
	out := item
	for i := 1; i < n; i++ {
		out += "," + item
	}
	return out
}
