package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"meldeflow/internal/workflow"
	"meldeflow/pkg/apperrors"
	"meldeflow/pkg/platform/httputil"
)

// Service defines the step operations the handler dispatches to.
type Service interface {
	Extract(ctx context.Context, caseID string) (workflow.ExtractResult, error)
	CheckCompleteness(ctx context.Context, caseID string) (workflow.CompletenessResult, error)
	MatchIdentity(ctx context.Context, caseID string) (workflow.IdentityResult, error)
	ValidateLandlordDoc(ctx context.Context, caseID string) (workflow.LandlordDocResult, error)
	CanonicalizeAddress(ctx context.Context, caseID string) (workflow.AddressResult, error)
	CheckBusinessRules(ctx context.Context, caseID string) (workflow.RulesResult, error)
	UpdateRegistry(ctx context.Context, caseID string) (workflow.RegistryResult, error)
	GenerateCertificate(ctx context.Context, caseID string) (workflow.CertificateResult, error)
	NotifyCitizen(ctx context.Context, caseID string) (workflow.NotifyResult, error)
	CloseCase(ctx context.Context, caseID string) (workflow.CloseResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts one POST per workflow step. HITL resolution is not a step;
// it lives on the overrides endpoint.
func (h *Handler) Register(r chi.Router) {
	r.Post("/cases/{caseID}/steps/{step}", h.HandleStep)
}

func (h *Handler) HandleStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := chi.URLParam(r, "caseID")
	step := chi.URLParam(r, "step")

	var (
		result any
		err    error
	)
	switch step {
	case "extract":
		result, err = h.service.Extract(ctx, caseID)
	case "check_completeness":
		result, err = h.service.CheckCompleteness(ctx, caseID)
	case "match_registry_identity":
		result, err = h.service.MatchIdentity(ctx, caseID)
	case "validate_landlord_confirmation":
		result, err = h.service.ValidateLandlordDoc(ctx, caseID)
	case "canonicalize_address":
		result, err = h.service.CanonicalizeAddress(ctx, caseID)
	case "check_business_rules":
		result, err = h.service.CheckBusinessRules(ctx, caseID)
	case "update_registry":
		result, err = h.service.UpdateRegistry(ctx, caseID)
	case "generate_certificate":
		result, err = h.service.GenerateCertificate(ctx, caseID)
	case "notify_citizen":
		result, err = h.service.NotifyCitizen(ctx, caseID)
	case "close_case_and_audit":
		result, err = h.service.CloseCase(ctx, caseID)
	default:
		httputil.WriteError(w, apperrors.Newf(apperrors.CodeBadRequest, "unknown workflow step %q", step))
		return
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
