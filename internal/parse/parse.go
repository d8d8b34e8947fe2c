// Package parse extracts a question set from the free-form text an LLM
// returns. The payload is the first structurally complete JSON object in
// the text; it must satisfy the embedded response schema, and every
// question is validated before a set is produced.
package parse

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/nkarim/testcraft/internal/model"
)

//go:embed schema.json
var schemaJSON []byte

var responseSchema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		panic("parse: invalid embedded schema: " + err.Error())
	}
	return s
}()

// ErrNoJSON means the response contains no complete JSON object.
var ErrNoJSON = errors.New("no JSON object found in response")

// response mirrors the JSON format the prompt demands from the model.
type response struct {
	Questions []questionWire `json:"questions"`
}

type questionWire struct {
	QuestionNumber int               `json:"question_number"`
	QuestionText   string            `json:"question_text"`
	Options        map[string]string `json:"options"`
	CorrectAnswer  string            `json:"correct_answer"`
	Explanation    string            `json:"explanation"`
	Topic          string            `json:"topic"`
	Difficulty     string            `json:"difficulty"`
}

// QuestionSet extracts and validates the question set embedded in raw.
// Questions are renumbered 1..n in arrival order; the model's own
// numbering is ignored.
func QuestionSet(raw string) ([]model.Question, error) {
	span, err := extractObject(raw)
	if err != nil {
		return nil, err
	}

	result, err := responseSchema.Validate(gojsonschema.NewStringLoader(span))
	if err != nil {
		return nil, fmt.Errorf("decode response JSON: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("response JSON does not match question format: %s", schemaErrors(result))
	}

	var resp response
	if err := json.Unmarshal([]byte(span), &resp); err != nil {
		return nil, fmt.Errorf("decode response JSON: %w", err)
	}

	questions := make([]model.Question, 0, len(resp.Questions))
	for i, w := range resp.Questions {
		q, err := buildQuestion(w, i+1)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func buildQuestion(w questionWire, number int) (model.Question, error) {
	var q model.Question

	text := strings.TrimSpace(w.QuestionText)
	if text == "" {
		return q, fmt.Errorf("empty question text")
	}
	explanation := strings.TrimSpace(w.Explanation)
	if explanation == "" {
		return q, fmt.Errorf("empty explanation")
	}

	if len(w.Options) != 4 {
		return q, fmt.Errorf("expected 4 options, got %d", len(w.Options))
	}
	options := make(map[model.Label]string, 4)
	for _, label := range model.Labels() {
		opt, ok := w.Options[string(label)]
		if !ok {
			return q, fmt.Errorf("missing option %s", label)
		}
		options[label] = opt
	}

	if !model.ValidLabel(w.CorrectAnswer) {
		return q, fmt.Errorf("invalid correct answer label %q", w.CorrectAnswer)
	}

	difficulty, ok := model.ParseDifficulty(w.Difficulty)
	if !ok {
		return q, fmt.Errorf("unknown difficulty %q", w.Difficulty)
	}

	return model.Question{
		Number:       number,
		Text:         text,
		Options:      options,
		CorrectLabel: model.Label(w.CorrectAnswer),
		Explanation:  explanation,
		Topic:        strings.TrimSpace(w.Topic),
		Difficulty:   difficulty,
	}, nil
}

// extractObject returns the first structurally complete {...} span in raw,
// tracking brace depth with string-literal and escape awareness.
func extractObject(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return raw[start : i+1], nil
				}
			}
		}
	}
	return "", ErrNoJSON
}

func schemaErrors(result *gojsonschema.Result) string {
	var sb strings.Builder
	for i, e := range result.Errors() {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.String())
	}
	return sb.String()
}
