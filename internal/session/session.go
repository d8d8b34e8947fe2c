// Package session drives the four-stage quiz wizard. All transitions are
// pure: Apply takes a state value and an action and returns the next state,
// so the wizard is testable without any rendering or storage dependency.
package session

import (
	"maps"

	"github.com/nkarim/testcraft/internal/model"
)

// Action is one of the wizard control actions.
type Action interface {
	isAction()
}

// Created stores a freshly generated question set and moves the session
// from Creating to Ready.
type Created struct {
	Name      string
	Params    model.TestParams
	Questions []model.Question
}

// Start begins the attempt from the Ready stage.
type Start struct{}

// Navigate moves the current question index by Delta, recording Selected
// (if any) for the on-screen question first.
type Navigate struct {
	Delta    int
	Selected model.Label
}

// Finish completes the attempt from the last question, recording Selected
// (if any) first.
type Finish struct {
	Selected model.Label
}

// Reset discards all session state unconditionally.
type Reset struct{}

func (Created) isAction()  {}
func (Start) isAction()    {}
func (Navigate) isAction() {}
func (Finish) isAction()   {}
func (Reset) isAction()    {}

// NewState returns an empty session in the Creating stage.
func NewState() model.SessionState {
	return model.SessionState{
		Stage:   model.StageCreating,
		Answers: model.AnswerMap{},
	}
}

// Apply returns the state after the action. Out-of-order actions are
// refused: the state comes back unchanged and ok is false. Reset is the
// only action accepted in every stage.
func Apply(s model.SessionState, a Action) (next model.SessionState, ok bool) {
	switch act := a.(type) {
	case Reset:
		return NewState(), true

	case Created:
		if s.Stage != model.StageCreating || len(act.Questions) == 0 {
			return s, false
		}
		return model.SessionState{
			Stage:       model.StageReady,
			StudentName: act.Name,
			Params:      act.Params,
			Questions:   act.Questions,
			Answers:     model.AnswerMap{},
		}, true

	case Start:
		if s.Stage != model.StageReady || len(s.Questions) == 0 {
			return s, false
		}
		s.Stage = model.StageInProgress
		s.CurrentIndex = 0
		return s, true

	case Navigate:
		if s.Stage != model.StageInProgress {
			return s, false
		}
		s = recordAnswer(s, act.Selected)
		s.CurrentIndex = clamp(s.CurrentIndex+act.Delta, 0, len(s.Questions)-1)
		return s, true

	case Finish:
		if s.Stage != model.StageInProgress || s.CurrentIndex != len(s.Questions)-1 {
			return s, false
		}
		s = recordAnswer(s, act.Selected)
		s.Stage = model.StageCompleted
		return s, true
	}

	return s, false
}

// recordAnswer writes the selected label for the current question into a
// copy of the answer map. An empty label keeps any previous answer.
func recordAnswer(s model.SessionState, selected model.Label) model.SessionState {
	if selected == "" {
		return s
	}
	answers := maps.Clone(s.Answers)
	if answers == nil {
		answers = model.AnswerMap{}
	}
	answers[s.Questions[s.CurrentIndex].Number] = selected
	s.Answers = answers
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
