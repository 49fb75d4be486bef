package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"programtrack/internal/member/models"
	"programtrack/internal/platform/middleware"
	dErrors "programtrack/pkg/domain-errors"
	"programtrack/pkg/platform/httputil"
)

// Service defines the member operations exposed over HTTP.
type Service interface {
	List(ctx context.Context, program string) ([]*models.Member, error)
	Add(ctx context.Context, program, nationalID, fullName string) (*models.Member, error)
	Import(ctx context.Context, program string, raw []byte) (*models.ImportResult, error)
	Summary(ctx context.Context, program string) (*models.Summary, error)
	Verify(ctx context.Context, program, nationalID string) (*models.Member, error)
}

// AddMemberRequest is the body of POST /programs/{program}/members.
type AddMemberRequest struct {
	NationalID string `json:"national_id" validate:"required"`
	FullName   string `json:"full_name" validate:"required"`
}

// VerifyRequest is the body of POST /programs/{program}/verify.
type VerifyRequest struct {
	NationalID string `json:"national_id" validate:"required"`
}

// Handler serves the member endpoints of a program.
type Handler struct {
	members        Service
	logger         *slog.Logger
	validate       *validator.Validate
	maxUploadBytes int64
}

// New creates a member Handler. Uploads larger than maxUploadBytes are rejected.
func New(members Service, logger *slog.Logger, maxUploadBytes int64) *Handler {
	return &Handler{
		members:        members,
		logger:         logger,
		validate:       validator.New(),
		maxUploadBytes: maxUploadBytes,
	}
}

// Register mounts the member routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/programs/{program}/members", h.handleList)
	r.Post("/programs/{program}/members", h.handleAdd)
	r.With(middleware.MaxBodySize(h.maxUploadBytes)).Post("/programs/{program}/members/import", h.handleImport)
	r.Post("/programs/{program}/verify", h.handleVerify)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	program := chi.URLParam(r, "program")

	members, err := h.members.List(ctx, program)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to list members", err)
		return
	}
	summary, err := h.members.Summary(ctx, program)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to summarise members", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"members": members,
		"summary": summary,
	})
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AddMemberRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid add member request", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid add member request",
			dErrors.Wrap(err, dErrors.CodeValidation, "national_id and full_name are required"))
		return
	}

	member, err := h.members.Add(ctx, chi.URLParam(r, "program"), req.NationalID, req.FullName)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to add member", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, member)
}

// handleImport accepts either a multipart form with a "file" part or the raw
// sheet as the request body.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, err := readUpload(r)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid import upload", err)
		return
	}
	result, err := h.members.Import(ctx, chi.URLParam(r, "program"), raw)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to import members", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req VerifyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid verify request", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid verify request",
			dErrors.Wrap(err, dErrors.CodeValidation, "national_id is required"))
		return
	}

	member, err := h.members.Verify(ctx, chi.URLParam(r, "program"), req.NationalID)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "verification failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, member)
}

func readUpload(r *http.Request) ([]byte, error) {
	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, fh, err := r.FormFile("file")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return nil, dErrors.New(dErrors.CodeBadRequest, "no file uploaded")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid multipart upload")
		}
		defer file.Close()
		if !strings.EqualFold(filepath.Ext(fh.Filename), ".csv") {
			return nil, dErrors.New(dErrors.CodeValidation, "uploaded file must be a .csv sheet")
		}
		src = file
	}

	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read upload")
	}
	if len(raw) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no file uploaded")
	}
	return raw, nil
}
