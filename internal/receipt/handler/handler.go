package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"programtrack/internal/receipt/models"
	"programtrack/internal/receipt/service"
	dErrors "programtrack/pkg/domain-errors"
	"programtrack/pkg/platform/httputil"
)

// Service defines the receipt operations exposed over HTTP.
type Service interface {
	List(ctx context.Context, program string) ([]models.Entry, error)
	Acknowledge(ctx context.Context, program, nationalID, signatureDataURI string) (*service.Acknowledgment, error)
	Open(ctx context.Context, program, filename string) (*os.File, error)
}

// AcknowledgeRequest carries the captured signature as a data URI.
type AcknowledgeRequest struct {
	Signature string `json:"signature" validate:"required"`
}

type entryResponse struct {
	models.Entry
	DisplayDate string `json:"display_date"`
}

// Handler serves receipt listing, download and acknowledgment.
type Handler struct {
	receipts Service
	logger   *slog.Logger
	validate *validator.Validate
}

func New(receipts Service, logger *slog.Logger) *Handler {
	return &Handler{
		receipts: receipts,
		logger:   logger,
		validate: validator.New(),
	}
}

// Register mounts the receipt routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/programs/{program}/members/{nationalID}/acknowledge", h.handleAcknowledge)
	r.Get("/programs/{program}/receipts", h.handleList)
	r.Get("/programs/{program}/receipts/{filename}", h.handleOpen)
}

func (h *Handler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AcknowledgeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid acknowledgment request", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid acknowledgment request",
			dErrors.Wrap(err, dErrors.CodeValidation, "signature is required"))
		return
	}

	ack, err := h.receipts.Acknowledge(ctx, chi.URLParam(r, "program"), chi.URLParam(r, "nationalID"), req.Signature)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "acknowledgment failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ack)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.receipts.List(ctx, chi.URLParam(r, "program"))
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to list receipts", err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{Entry: e, DisplayDate: e.DisplayDate()})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"receipts": out})
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filename := chi.URLParam(r, "filename")

	f, err := h.receipts.Open(ctx, chi.URLParam(r, "program"), filename)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to open receipt", err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to stat receipt",
			dErrors.Wrap(err, dErrors.CodeInternal, "failed to open receipt"))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	http.ServeContent(w, r, filename, info.ModTime(), f)
}
