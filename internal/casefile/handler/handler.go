package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"meldeflow/internal/casefile"
	"meldeflow/internal/casefile/metrics"
	"meldeflow/internal/domain"
	"meldeflow/pkg/apperrors"
	"meldeflow/pkg/platform/httputil"
	"meldeflow/pkg/platform/sentinel"
	"meldeflow/pkg/requestcontext"
)

// Handler exposes case creation and read access. Mutating workflow operations
// live in the workflow and hitl handlers.
type Handler struct {
	store   casefile.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(store casefile.Store, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{store: store, logger: logger, metrics: m}
}

// Register mounts the public case endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/cases", h.HandleCreate)
	r.Get("/cases/{caseID}", h.HandleGet)
	r.Get("/cases/{caseID}/audit", h.HandleAudit)
}

// RegisterAdmin mounts operational endpoints; the caller wraps them in the
// admin token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/cases", h.HandleListAll)
}

// CreateRequest is the intake payload. Demo data lives in test fixtures, not
// in the contract: every field the workflow depends on must be supplied.
type CreateRequest struct {
	CitizenName     string `json:"citizen_name"`
	CitizenDOB      string `json:"citizen_dob"`
	Email           string `json:"email"`
	OldAddress      string `json:"old_address"`
	NewAddressRaw   string `json:"new_address_raw"`
	MoveInDateRaw   string `json:"move_in_date_raw"`
	LandlordDocPath string `json:"landlord_doc_path"`
	IDDocPath       string `json:"id_doc_path"`
}

func (req CreateRequest) validate() error {
	var missing []string
	if req.CitizenName == "" {
		missing = append(missing, "citizen_name")
	}
	if req.CitizenDOB == "" {
		missing = append(missing, "citizen_dob")
	}
	if req.OldAddress == "" {
		missing = append(missing, "old_address")
	}
	if req.NewAddressRaw == "" {
		missing = append(missing, "new_address_raw")
	}
	if len(missing) > 0 {
		return apperrors.Newf(apperrors.CodeBadRequest, "missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.Decode[CreateRequest](w, r)
	if !ok {
		return
	}
	if err := req.validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.store.Create(ctx, domain.IntakeData{
		CitizenName:     req.CitizenName,
		CitizenDOB:      req.CitizenDOB,
		Email:           req.Email,
		OldAddress:      req.OldAddress,
		NewAddressRaw:   req.NewAddressRaw,
		MoveInDateRaw:   req.MoveInDateRaw,
		LandlordDocPath: req.LandlordDocPath,
		IDDocPath:       req.IDDocPath,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "case creation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.metrics.IncCasesCreated()
	h.logger.InfoContext(ctx, "case created",
		"request_id", requestcontext.RequestID(ctx),
		"case_id", c.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"case_id": c.ID,
		"status":  string(c.Status),
	})
}

// caseView is the read model returned to callers; the audit trail has its own
// endpoint to keep snapshots small.
type caseView struct {
	ID         string                  `json:"id"`
	Status     domain.Status           `json:"status"`
	Intake     domain.IntakeData       `json:"intake"`
	Extraction *domain.Extraction      `json:"extraction,omitempty"`
	Overrides  map[domain.Field]string `json:"overrides"`
	Working    map[domain.Field]string `json:"working"`
	CreatedAt  time.Time               `json:"created_at"`
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Get(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, translate(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, caseView{
		ID:         c.ID,
		Status:     c.Status,
		Intake:     c.Intake,
		Extraction: c.Extraction,
		Overrides:  c.Overrides,
		Working:    c.Working,
		CreatedAt:  c.CreatedAt,
	})
}

func (h *Handler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Get(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, translate(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"case_id": c.ID,
		"audit":   c.Audit,
	})
}

func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	cases, err := h.store.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	summaries := make([]map[string]any, 0, len(cases))
	for _, c := range cases {
		summaries = append(summaries, map[string]any{
			"case_id":      c.ID,
			"status":       c.Status,
			"citizen_name": c.Intake.CitizenName,
			"audit_length": len(c.Audit),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"cases": summaries})
}

func translate(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return apperrors.New(apperrors.CodeCaseNotFound, "unknown case identifier")
	}
	return err
}
