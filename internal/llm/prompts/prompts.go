// Package prompts builds the question-generation prompt from an embedded
// text template.
package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/nkarim/testcraft/internal/model"
)

//go:embed generate.txt
var generateTemplate string

var generateTmpl = template.Must(template.New("generate").Parse(generateTemplate))

// TopicSection is one selected topic with its syllabus material.
type TopicSection struct {
	Name          string
	Description   string
	PastQuestions string
}

// BuildRequest holds everything the generation prompt needs.
type BuildRequest struct {
	Subject        string
	Topics         []TopicSection
	AdditionalInfo string
	NumQuestions   int
	Difficulty     model.Difficulty
}

// Build renders the generation prompt. Deterministic for identical input.
func Build(req BuildRequest) (string, error) {
	if len(req.Topics) == 0 {
		return "", fmt.Errorf("no topics selected")
	}
	var buf bytes.Buffer
	if err := generateTmpl.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("render generation prompt: %w", err)
	}
	return buf.String(), nil
}
