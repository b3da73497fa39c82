package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"meldeflow/internal/casefile"
	"meldeflow/internal/domain"
	"meldeflow/internal/hitl"
	"meldeflow/pkg/apperrors"
	"meldeflow/pkg/platform/httputil"
	"meldeflow/pkg/platform/sentinel"
)

// Service defines the override operations the handler needs.
type Service interface {
	ResolveOverride(ctx context.Context, caseID string, field domain.Field, value string) (hitl.Resolution, error)
}

type Handler struct {
	service Service
	store   casefile.Store
	logger  *slog.Logger
}

func New(service Service, store casefile.Store, logger *slog.Logger) *Handler {
	return &Handler{service: service, store: store, logger: logger}
}

// Register mounts the override endpoint. The caller wraps this in clerk
// authentication; EscalationPrompt is read-only and registered separately.
func (h *Handler) Register(r chi.Router) {
	r.Post("/cases/{caseID}/overrides", h.HandleOverride)
}

// RegisterPublic mounts the read-only escalation prompt.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/cases/{caseID}/escalation", h.HandleEscalation)
}

type overrideRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *Handler) HandleOverride(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	req, ok := httputil.Decode[overrideRequest](w, r)
	if !ok {
		return
	}
	if req.Field == "" {
		httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "field is required"))
		return
	}

	resolution, err := h.service.ResolveOverride(r.Context(), caseID, domain.Field(req.Field), req.Value)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resolution)
}

func (h *Handler) HandleEscalation(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	if _, err := h.store.Get(r.Context(), caseID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, apperrors.New(apperrors.CodeCaseNotFound, "unknown case identifier"))
			return
		}
		httputil.WriteError(w, err)
		return
	}

	field := r.URL.Query().Get("field")
	problem := r.URL.Query().Get("problem")
	if field == "" {
		field = string(domain.FieldNewAddress)
	}
	if problem == "" {
		problem = "low extraction confidence"
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"case_id": caseID,
		"prompt":  hitl.EscalationPrompt(caseID, field, problem),
	})
}
