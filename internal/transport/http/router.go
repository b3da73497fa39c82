// Package httptransport assembles the HTTP surface: public case and workflow
// endpoints, the clerk-authenticated HITL surface, and the token-guarded admin
// surface. Feature handlers register their own routes; this package only owns
// composition and cross-cutting middleware.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	casehandler "meldeflow/internal/casefile/handler"
	hitlhandler "meldeflow/internal/hitl/handler"
	"meldeflow/internal/platform/middleware"
	"meldeflow/internal/policy"
	workflowhandler "meldeflow/internal/workflow/handler"
	"meldeflow/pkg/platform/httputil"
)

// Deps carries everything the router composes.
type Deps struct {
	Logger *slog.Logger
	Policy policy.Policy

	Cases *casehandler.Handler
	HITL  *hitlhandler.Handler
	Steps *workflowhandler.Handler

	ClerkJWTKey string
	AdminToken  string
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/policy", handlePolicy(deps.Policy))

	deps.Cases.Register(r)
	deps.Steps.Register(r)
	deps.HITL.RegisterPublic(r)

	// Overrides require an authenticated clerk; the actor identity feeds the
	// audit trail.
	r.Group(func(g chi.Router) {
		g.Use(middleware.RequireClerk(deps.ClerkJWTKey, deps.Logger))
		deps.HITL.Register(g)
	})

	r.Route("/admin", func(g chi.Router) {
		g.Use(middleware.RequireAdminToken(deps.AdminToken, deps.Logger))
		deps.Cases.RegisterAdmin(g)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePolicy serves the decision constants so calling agents and reviewing
// officers see the same rules the workflow enforces.
func handlePolicy(pol policy.Policy) http.HandlerFunc {
	fields := make([]string, 0, len(pol.WorkingFields))
	for _, f := range pol.WorkingFields {
		fields = append(fields, string(f))
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"policy":                   policy.Notes,
			"confidence_threshold":     pol.ConfidenceThreshold,
			"identity_match_threshold": pol.IdentityMatchThreshold,
			"overridable_fields":       fields,
		})
	}
}
