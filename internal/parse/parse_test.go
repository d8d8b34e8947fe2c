package parse

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nkarim/testcraft/internal/model"
)

func questionJSON(number int, correct string) string {
	return fmt.Sprintf(`{
		"question_number": %d,
		"question_text": "What is the SI unit of force?",
		"options": {"A": "Newton", "B": "Joule", "C": "Watt", "D": "Pascal"},
		"correct_answer": %q,
		"explanation": "Force is measured in newtons.",
		"topic": "Newton's Laws of Motion",
		"difficulty": "Easy"
	}`, number, correct)
}

func TestQuestionSetRoundTrip(t *testing.T) {
	raw := fmt.Sprintf("here is your quiz: {\"questions\": [%s, %s]} thanks",
		questionJSON(1, "A"), questionJSON(2, "B"))

	questions, err := QuestionSet(raw)
	if err != nil {
		t.Fatalf("QuestionSet: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}

	q := questions[0]
	if q.Number != 1 {
		t.Errorf("expected number 1, got %d", q.Number)
	}
	if q.Text != "What is the SI unit of force?" {
		t.Errorf("unexpected text %q", q.Text)
	}
	if len(q.Options) != 4 || q.Options[model.LabelA] != "Newton" {
		t.Errorf("unexpected options %v", q.Options)
	}
	if q.CorrectLabel != model.LabelA {
		t.Errorf("expected correct label A, got %q", q.CorrectLabel)
	}
	if q.Difficulty != model.DifficultyEasy {
		t.Errorf("expected difficulty Easy, got %q", q.Difficulty)
	}
	if questions[1].CorrectLabel != model.LabelB {
		t.Errorf("expected second correct label B, got %q", questions[1].CorrectLabel)
	}
}

func TestQuestionSetRenumbers(t *testing.T) {
	// Model numbering is ignored; questions are renumbered in order.
	raw := fmt.Sprintf(`{"questions": [%s, %s]}`,
		questionJSON(7, "A"), questionJSON(3, "B"))

	questions, err := QuestionSet(raw)
	if err != nil {
		t.Fatalf("QuestionSet: %v", err)
	}
	if questions[0].Number != 1 || questions[1].Number != 2 {
		t.Errorf("expected renumbering 1,2; got %d,%d",
			questions[0].Number, questions[1].Number)
	}
}

func TestQuestionSetNoJSON(t *testing.T) {
	for _, raw := range []string{
		"",
		"no braces here at all",
		"opened but never closed: {\"questions\": [",
	} {
		_, err := QuestionSet(raw)
		if !errors.Is(err, ErrNoJSON) {
			t.Errorf("raw %q: expected ErrNoJSON, got %v", raw, err)
		}
	}
}

func TestQuestionSetIgnoresTrailingGarbage(t *testing.T) {
	// A second JSON-ish fragment after the payload must not break the scan.
	raw := fmt.Sprintf(`{"questions": [%s]} and also {not json}`, questionJSON(1, "C"))

	questions, err := QuestionSet(raw)
	if err != nil {
		t.Fatalf("QuestionSet: %v", err)
	}
	if len(questions) != 1 || questions[0].CorrectLabel != model.LabelC {
		t.Errorf("unexpected result %v", questions)
	}
}

func TestQuestionSetBracesInStrings(t *testing.T) {
	q := strings.Replace(questionJSON(1, "A"),
		"What is the SI unit of force?",
		"Evaluate f(x) = {x} for x in {1, 2}", 1)

	questions, err := QuestionSet(fmt.Sprintf(`{"questions": [%s]}`, q))
	if err != nil {
		t.Fatalf("QuestionSet: %v", err)
	}
	if !strings.Contains(questions[0].Text, "{x}") {
		t.Errorf("braces inside strings mangled: %q", questions[0].Text)
	}
}

func TestQuestionSetInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not valid json", `{"questions": [}`},
		{"empty questions", `{"questions": []}`},
		{"missing questions key", `{"items": []}`},
		{"three options", `{"questions": [{
			"question_text": "Q?",
			"options": {"A": "1", "B": "2", "C": "3"},
			"correct_answer": "A",
			"explanation": "E",
			"difficulty": "Easy"
		}]}`},
		{"extra option label", `{"questions": [{
			"question_text": "Q?",
			"options": {"A": "1", "B": "2", "C": "3", "D": "4", "E": "5"},
			"correct_answer": "A",
			"explanation": "E",
			"difficulty": "Easy"
		}]}`},
		{"bad correct label", `{"questions": [{
			"question_text": "Q?",
			"options": {"A": "1", "B": "2", "C": "3", "D": "4"},
			"correct_answer": "X",
			"explanation": "E",
			"difficulty": "Easy"
		}]}`},
		{"missing explanation", `{"questions": [{
			"question_text": "Q?",
			"options": {"A": "1", "B": "2", "C": "3", "D": "4"},
			"correct_answer": "A",
			"difficulty": "Easy"
		}]}`},
		{"unknown difficulty", `{"questions": [{
			"question_text": "Q?",
			"options": {"A": "1", "B": "2", "C": "3", "D": "4"},
			"correct_answer": "A",
			"explanation": "E",
			"difficulty": "Impossible"
		}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := QuestionSet(tt.raw); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestQuestionSetDifficultyCaseInsensitive(t *testing.T) {
	raw := strings.Replace(
		fmt.Sprintf(`{"questions": [%s]}`, questionJSON(1, "A")),
		`"difficulty": "Easy"`, `"difficulty": "easy"`, 1)

	questions, err := QuestionSet(raw)
	if err != nil {
		t.Fatalf("QuestionSet: %v", err)
	}
	if questions[0].Difficulty != model.DifficultyEasy {
		t.Errorf("expected normalized Easy, got %q", questions[0].Difficulty)
	}
}
