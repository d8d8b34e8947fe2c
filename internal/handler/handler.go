// Package handler implements the HTTP surface: a JSON API that drives the
// quiz wizard, plus one embedded static page that renders it in the
// browser.
package handler

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/nkarim/testcraft/internal/i18n"
	"github.com/nkarim/testcraft/internal/llm/prompts"
	"github.com/nkarim/testcraft/internal/model"
	"github.com/nkarim/testcraft/internal/parse"
	"github.com/nkarim/testcraft/internal/session"
	"github.com/nkarim/testcraft/internal/store"
	"github.com/nkarim/testcraft/internal/syllabus"
)

//go:embed static/index.html
var indexHTML []byte

// Generator produces raw model output for a prompt. *llm.Client satisfies
// it; tests substitute a stub.
type Generator interface {
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	catalog *syllabus.Catalog
	gen     Generator
	store   *store.Store
	config  model.AppConfig
}

// New creates a new Handler.
func New(catalog *syllabus.Catalog, gen Generator, s *store.Store, cfg model.AppConfig) *Handler {
	return &Handler{catalog: catalog, gen: gen, store: s, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/api/catalog", h.handleCatalog)
	r.Get("/api/catalog/topics", h.handleTopics)
	r.Post("/api/tests", h.handleCreateTest)
	r.Get("/api/session", h.handleSessionView)
	r.Post("/api/session/start", h.handleStart)
	r.Post("/api/session/navigate", h.handleNavigate)
	r.Post("/api/session/finish", h.handleFinish)
	r.Post("/api/session/reset", h.handleReset)
	r.Get("/api/session/results", h.handleResults)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

type catalogResponse struct {
	Subjects     map[string][]string `json:"subjects"`
	Difficulties []model.Difficulty  `json:"difficulties"`
	MinQuestions int                 `json:"min_questions"`
	MaxQuestions int                 `json:"max_questions"`
	NeedsKey     bool                `json:"needs_key"`
}

func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	subjects := make(map[string][]string)
	for _, s := range h.catalog.Subjects() {
		subjects[s] = h.catalog.Topics(s)
	}
	writeJSON(w, http.StatusOK, catalogResponse{
		Subjects:     subjects,
		Difficulties: []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard},
		MinQuestions: h.config.MinQuestions,
		MaxQuestions: h.config.MaxQuestions,
		NeedsKey:     !h.config.HasServerKey,
	})
}

type topicEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) handleTopics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject := r.URL.Query().Get("subject")
	if !h.catalog.HasSubject(subject) {
		writeError(w, http.StatusBadRequest, i18n.Td(ctx, "error.unknown_subject", map[string]any{"Subject": subject}))
		return
	}

	names := h.catalog.SearchTopics(subject, r.URL.Query().Get("q"))
	topics := lo.Map(names, func(name string, _ int) topicEntry {
		info, _ := h.catalog.TopicInfo(subject, name)
		return topicEntry{Name: name, Description: info.Description}
	})
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

type createTestRequest struct {
	StudentName    string   `json:"student_name"`
	APIKey         string   `json:"api_key"`
	Subject        string   `json:"subject"`
	Topics         []string `json:"topics"`
	AdditionalInfo string   `json:"additional_info"`
	NumQuestions   int      `json:"num_questions"`
	Difficulty     string   `json:"difficulty"`
}

func (h *Handler) handleCreateTest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, i18n.T(ctx, "error.invalid_request"))
		return
	}

	// Validation order mirrors the wizard's form: identity first, then
	// credential, then test parameters.
	if req.StudentName == "" {
		writeError(w, http.StatusBadRequest, i18n.T(ctx, "error.missing_name"))
		return
	}
	if req.APIKey == "" && !h.config.HasServerKey {
		writeError(w, http.StatusBadRequest, i18n.T(ctx, "error.missing_credential"))
		return
	}
	if len(req.Topics) == 0 {
		writeError(w, http.StatusBadRequest, i18n.T(ctx, "error.missing_topics"))
		return
	}
	if !h.catalog.HasSubject(req.Subject) {
		writeError(w, http.StatusBadRequest, i18n.Td(ctx, "error.unknown_subject", map[string]any{"Subject": req.Subject}))
		return
	}
	for _, topic := range req.Topics {
		if _, ok := h.catalog.TopicInfo(req.Subject, topic); !ok {
			writeError(w, http.StatusBadRequest, i18n.Td(ctx, "error.unknown_topic", map[string]any{"Topic": topic, "Subject": req.Subject}))
			return
		}
	}
	if req.NumQuestions < h.config.MinQuestions || req.NumQuestions > h.config.MaxQuestions {
		writeError(w, http.StatusBadRequest, i18n.Td(ctx, "error.bad_count", map[string]any{
			"Min": h.config.MinQuestions,
			"Max": h.config.MaxQuestions,
		}))
		return
	}
	difficulty, ok := model.ParseDifficulty(req.Difficulty)
	if !ok {
		writeError(w, http.StatusBadRequest, i18n.T(ctx, "error.bad_difficulty"))
		return
	}

	prompt, err := prompts.Build(prompts.BuildRequest{
		Subject: req.Subject,
		Topics: lo.Map(req.Topics, func(name string, _ int) prompts.TopicSection {
			info, _ := h.catalog.TopicInfo(req.Subject, name)
			return prompts.TopicSection{Name: name, Description: info.Description, PastQuestions: info.PastQuestions}
		}),
		AdditionalInfo: req.AdditionalInfo,
		NumQuestions:   req.NumQuestions,
		Difficulty:     difficulty,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, i18n.T(ctx, "error.invalid_request"))
		return
	}

	raw, err := h.gen.Generate(ctx, req.APIKey, prompt)
	if err != nil {
		slog.Error("question generation failed", "subject", req.Subject, "error", err)
		writeError(w, http.StatusBadGateway, i18n.T(ctx, "error.generation_failed"))
		return
	}

	questions, err := parse.QuestionSet(raw)
	if err != nil {
		slog.Error("response parsing failed", "subject", req.Subject, "error", err)
		writeError(w, http.StatusBadGateway, i18n.T(ctx, "error.parse_failed"))
		return
	}
	if len(questions) != req.NumQuestions {
		slog.Warn("question count differs from requested",
			"requested", req.NumQuestions, "returned", len(questions))
	}

	params := model.TestParams{
		Subject:        req.Subject,
		Topics:         req.Topics,
		AdditionalInfo: req.AdditionalInfo,
		NumQuestions:   req.NumQuestions,
		Difficulty:     difficulty,
	}
	state, ok := session.Apply(session.NewState(), session.Created{
		Name:      req.StudentName,
		Params:    params,
		Questions: questions,
	})
	if !ok {
		writeError(w, http.StatusInternalServerError, i18n.T(ctx, "error.generation_failed"))
		return
	}

	// One active session per browser: a new test replaces the old one.
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		h.store.Delete(cookie.Value)
	}
	id := h.store.Create(state)
	h.setSessionCookie(w, id)

	slog.Info("test created", "student", req.StudentName, "subject", req.Subject,
		"questions", len(questions), "difficulty", difficulty)
	writeJSON(w, http.StatusCreated, stageView(ctx, state))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
