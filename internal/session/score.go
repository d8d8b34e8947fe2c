package session

import (
	"github.com/samber/lo"

	"github.com/nkarim/testcraft/internal/model"
)

// Performance bands for the results screen. The values double as i18n
// message IDs.
const (
	BandExcellent    = "results.band_excellent"
	BandGood         = "results.band_good"
	BandKeepStudying = "results.band_keep_studying"
)

// Score computes the report for one attempt by exact label comparison.
// An absent answer counts as incorrect. Callers must guarantee a
// non-empty question set. Pure and idempotent: safe to call on every
// results render.
func Score(questions []model.Question, answers model.AnswerMap) model.ScoreReport {
	perQuestion := lo.Map(questions, func(q model.Question, _ int) model.QuestionResult {
		chosen := answers[q.Number]
		return model.QuestionResult{
			Number:       q.Number,
			Text:         q.Text,
			Options:      q.Options,
			ChosenLabel:  chosen,
			CorrectLabel: q.CorrectLabel,
			IsCorrect:    chosen == q.CorrectLabel,
			Explanation:  q.Explanation,
			Topic:        q.Topic,
			Difficulty:   q.Difficulty,
		}
	})

	correct := lo.CountBy(perQuestion, func(r model.QuestionResult) bool { return r.IsCorrect })
	total := len(questions)

	return model.ScoreReport{
		Total:          total,
		CorrectCount:   correct,
		IncorrectCount: total - correct,
		Percentage:     float64(correct) / float64(total) * 100,
		PerQuestion:    perQuestion,
	}
}

// Band returns the performance band message ID for a percentage score.
func Band(percentage float64) string {
	switch {
	case percentage >= 80:
		return BandExcellent
	case percentage >= 60:
		return BandGood
	default:
		return BandKeepStudying
	}
}
