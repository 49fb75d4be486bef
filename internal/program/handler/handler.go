package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"programtrack/internal/program/models"
	dErrors "programtrack/pkg/domain-errors"
	"programtrack/pkg/platform/httputil"
)

// Service defines the program operations exposed over HTTP.
type Service interface {
	ListDetails(ctx context.Context, includeHidden bool) ([]*models.ProgramDetails, error)
	Get(ctx context.Context, englishName string) (*models.ProgramDetails, error)
	Add(ctx context.Context, englishName, arabicName string) (*models.Program, error)
	ToggleVisibility(ctx context.Context, englishName string) (*models.Program, error)
	Rename(ctx context.Context, englishName, arabicName string) (*models.Program, error)
}

// AddProgramRequest is the body of POST /programs.
type AddProgramRequest struct {
	EnglishName string `json:"english_name" validate:"required"`
	ArabicName  string `json:"arabic_name" validate:"required"`
}

// RenameProgramRequest is the body of PUT /programs/{program}/name.
type RenameProgramRequest struct {
	ArabicName string `json:"arabic_name" validate:"required"`
}

// Handler serves the program registry endpoints.
type Handler struct {
	programs Service
	logger   *slog.Logger
	validate *validator.Validate
}

// New creates a program Handler.
func New(programs Service, logger *slog.Logger) *Handler {
	return &Handler{
		programs: programs,
		logger:   logger,
		validate: validator.New(),
	}
}

// Register mounts the program routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/programs", h.handleList)
	r.Post("/programs", h.handleAdd)
	r.Get("/programs/{program}", h.handleGet)
	r.Post("/programs/{program}/visibility", h.handleToggle)
	r.Put("/programs/{program}/name", h.handleRename)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	includeHidden := strings.EqualFold(r.URL.Query().Get("all"), "true")

	programs, err := h.programs.ListDetails(ctx, includeHidden)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to list programs", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"programs": programs})
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AddProgramRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid add program request", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid add program request",
			dErrors.Wrap(err, dErrors.CodeValidation, "english_name and arabic_name are required"))
		return
	}

	// Keys are lowercased at the edge; the registry itself is case-sensitive.
	program, err := h.programs.Add(ctx, strings.ToLower(strings.TrimSpace(req.EnglishName)), req.ArabicName)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to add program", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, program)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	details, err := h.programs.Get(ctx, chi.URLParam(r, "program"))
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to get program", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, details)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	program, err := h.programs.ToggleVisibility(ctx, chi.URLParam(r, "program"))
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to toggle program visibility", err)
		return
	}
	if program == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, program)
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RenameProgramRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid rename request", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid rename request",
			dErrors.Wrap(err, dErrors.CodeValidation, "arabic_name is required"))
		return
	}

	program, err := h.programs.Rename(ctx, chi.URLParam(r, "program"), req.ArabicName)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to rename program", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, program)
}
