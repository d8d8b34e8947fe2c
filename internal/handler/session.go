package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nkarim/testcraft/internal/i18n"
	"github.com/nkarim/testcraft/internal/model"
	"github.com/nkarim/testcraft/internal/session"
)

const sessionCookie = "quiz_session"

func (h *Handler) cookiePath() string {
	if h.config.BasePath != "" {
		return h.config.BasePath
	}
	return "/"
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     h.cookiePath(),
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     h.cookiePath(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// currentSession resolves the request's cookie to a stored session.
// A missing cookie, an unknown ID, and an expired session all look the
// same to the caller.
func (h *Handler) currentSession(r *http.Request) (string, model.SessionState, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", model.SessionState{}, false
	}
	state, ok := h.store.Get(cookie.Value)
	return cookie.Value, state, ok
}

// questionView is the InProgress projection of a question. The correct
// label and explanation stay server-side until the attempt completes.
type questionView struct {
	Number      int                    `json:"number"`
	Text        string                 `json:"text"`
	Options     map[model.Label]string `json:"options"`
	ChosenLabel model.Label            `json:"chosen_label,omitempty"`
	Topic       string                 `json:"topic"`
	Difficulty  model.Difficulty       `json:"difficulty"`
}

type progressView struct {
	Current  int `json:"current"`
	Total    int `json:"total"`
	Answered int `json:"answered"`
}

// stageView shapes the render data for the session's current stage.
func stageView(ctx context.Context, s model.SessionState) map[string]any {
	view := map[string]any{"stage": s.Stage}

	switch s.Stage {
	case model.StageReady:
		view["student_name"] = s.StudentName
		view["params"] = s.Params
		view["total"] = len(s.Questions)

	case model.StageInProgress:
		q := s.Questions[s.CurrentIndex]
		view["student_name"] = s.StudentName
		view["question"] = questionView{
			Number:      q.Number,
			Text:        q.Text,
			Options:     q.Options,
			ChosenLabel: s.Answers[q.Number],
			Topic:       q.Topic,
			Difficulty:  q.Difficulty,
		}
		view["progress"] = progressView{
			Current:  s.CurrentIndex + 1,
			Total:    len(s.Questions),
			Answered: len(s.Answers),
		}

	case model.StageCompleted:
		view["student_name"] = s.StudentName
		view["total"] = len(s.Questions)
	}

	return view
}

func (h *Handler) handleSessionView(w http.ResponseWriter, r *http.Request) {
	_, state, ok := h.currentSession(r)
	if !ok {
		// No session is not an error: the wizard starts at Creating.
		writeJSON(w, http.StatusOK, stageView(r.Context(), session.NewState()))
		return
	}
	writeJSON(w, http.StatusOK, stageView(r.Context(), state))
}

// applyAction runs one wizard action against the request's session and
// writes either the next stage view or the appropriate error.
func (h *Handler) applyAction(w http.ResponseWriter, r *http.Request, a session.Action) {
	ctx := r.Context()
	id, state, ok := h.currentSession(r)
	if !ok {
		writeError(w, http.StatusNotFound, i18n.T(ctx, "error.no_session"))
		return
	}

	next, ok := session.Apply(state, a)
	if !ok {
		writeError(w, http.StatusConflict, i18n.T(ctx, "error.wrong_stage"))
		return
	}

	h.store.Update(id, next)
	writeJSON(w, http.StatusOK, stageView(ctx, next))
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	h.applyAction(w, r, session.Start{})
}

type navigateRequest struct {
	Delta    int    `json:"delta"`
	Selected string `json:"selected"`
}

func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, i18n.T(ctx, "error.invalid_request"))
		return
	}
	if req.Delta != -1 && req.Delta != 1 {
		writeError(w, http.StatusBadRequest, i18n.T(ctx, "error.invalid_delta"))
		return
	}
	if req.Selected != "" && !model.ValidLabel(req.Selected) {
		writeError(w, http.StatusBadRequest, i18n.T(ctx, "error.invalid_label"))
		return
	}

	h.applyAction(w, r, session.Navigate{Delta: req.Delta, Selected: model.Label(req.Selected)})
}

type finishRequest struct {
	Selected string `json:"selected"`
}

func (h *Handler) handleFinish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req finishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, i18n.T(ctx, "error.invalid_request"))
		return
	}
	if req.Selected != "" && !model.ValidLabel(req.Selected) {
		writeError(w, http.StatusBadRequest, i18n.T(ctx, "error.invalid_label"))
		return
	}

	h.applyAction(w, r, session.Finish{Selected: model.Label(req.Selected)})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		h.store.Delete(cookie.Value)
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, stageView(r.Context(), session.NewState()))
}

type resultsResponse struct {
	StudentName string            `json:"student_name"`
	Params      model.TestParams  `json:"params"`
	Report      model.ScoreReport `json:"report"`
	BandMessage string            `json:"band_message"`
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, state, ok := h.currentSession(r)
	if !ok {
		writeError(w, http.StatusNotFound, i18n.T(ctx, "error.no_session"))
		return
	}
	if state.Stage != model.StageCompleted {
		writeError(w, http.StatusConflict, i18n.T(ctx, "error.not_completed"))
		return
	}

	report := session.Score(state.Questions, state.Answers)
	resp := resultsResponse{
		StudentName: state.StudentName,
		Params:      state.Params,
		Report:      report,
		BandMessage: i18n.Td(ctx, session.Band(report.Percentage), map[string]any{"Name": state.StudentName}),
	}

	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "quiz-results.json"))
	}
	writeJSON(w, http.StatusOK, resp)
}
