package model

import "strings"

// Difficulty represents a question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty normalizes a difficulty string case-insensitively.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, true
	case "medium":
		return DifficultyMedium, true
	case "hard":
		return DifficultyHard, true
	}
	return "", false
}

// Label identifies one of the four answer options.
type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
	LabelC Label = "C"
	LabelD Label = "D"
)

// Labels returns all option labels in display order.
func Labels() []Label {
	return []Label{LabelA, LabelB, LabelC, LabelD}
}

// ValidLabel reports whether s is one of A, B, C, D.
func ValidLabel(s string) bool {
	switch Label(s) {
	case LabelA, LabelB, LabelC, LabelD:
		return true
	}
	return false
}

// Question is a single validated multiple-choice question.
// Immutable once constructed by the parser.
type Question struct {
	Number       int              `json:"number"`
	Text         string           `json:"text"`
	Options      map[Label]string `json:"options"`
	CorrectLabel Label            `json:"correct_label"`
	Explanation  string           `json:"explanation"`
	Topic        string           `json:"topic"`
	Difficulty   Difficulty       `json:"difficulty"`
}

// AnswerMap maps 1-based question numbers to the chosen label.
// Absent entries mean the question is unanswered.
type AnswerMap map[int]Label

// Stage is one of the four wizard phases of a session's lifecycle.
type Stage string

const (
	StageCreating   Stage = "creating"
	StageReady      Stage = "ready"
	StageInProgress Stage = "in_progress"
	StageCompleted  Stage = "completed"
)

// TestParams holds the creation parameters of a test.
type TestParams struct {
	Subject        string     `json:"subject"`
	Topics         []string   `json:"topics"`
	AdditionalInfo string     `json:"additional_info,omitempty"`
	NumQuestions   int        `json:"num_questions"`
	Difficulty     Difficulty `json:"difficulty"`
}

// SessionState is the full state of one quiz session. Transitions live in
// the session package; this struct is treated as a value there.
type SessionState struct {
	Stage        Stage        `json:"stage"`
	StudentName  string       `json:"student_name"`
	Params       TestParams   `json:"params"`
	Questions    []Question   `json:"questions,omitempty"`
	Answers      AnswerMap    `json:"answers,omitempty"`
	CurrentIndex int          `json:"current_index"`
}

// QuestionResult is the per-question entry of a ScoreReport.
type QuestionResult struct {
	Number       int              `json:"number"`
	Text         string           `json:"text"`
	Options      map[Label]string `json:"options"`
	ChosenLabel  Label            `json:"chosen_label,omitempty"`
	CorrectLabel Label            `json:"correct_label"`
	IsCorrect    bool             `json:"is_correct"`
	Explanation  string           `json:"explanation"`
	Topic        string           `json:"topic"`
	Difficulty   Difficulty       `json:"difficulty"`
}

// ScoreReport is the derived summary of one completed attempt. It is
// recomputed from the question set and answer map whenever results render.
type ScoreReport struct {
	Total          int              `json:"total"`
	CorrectCount   int              `json:"correct_count"`
	IncorrectCount int              `json:"incorrect_count"`
	Percentage     float64          `json:"percentage"`
	PerQuestion    []QuestionResult `json:"per_question"`
}

// AppConfig holds runtime parameters set via CLI flags.
type AppConfig struct {
	MinQuestions  int    // lower bound for requested question count
	MaxQuestions  int    // upper bound for requested question count
	BasePath      string // URL prefix for sub-path deployments (e.g. "/quiz")
	SecureCookies bool   // Set Secure flag on cookies (disable for local dev)
	HasServerKey  bool   // a server-level LLM key is configured
}
