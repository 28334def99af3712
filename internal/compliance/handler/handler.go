// Package handler exposes compliance evaluation over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"siteguard/internal/compliance"
	identitymodels "siteguard/internal/identity/models"
	schemamodels "siteguard/internal/schema/models"
	"siteguard/internal/schema/validate"
	id "siteguard/pkg/domain"
	dErrors "siteguard/pkg/domain-errors"
	"siteguard/pkg/platform/httputil"
	"siteguard/pkg/requestcontext"
)

// Service defines the interface for compliance operations.
type Service interface {
	ValidatePerson(ctx context.Context, personID id.PersonID) (*compliance.Report, error)
	ValidateFieldData(ctx context.Context, data schemamodels.AttributeMap) (validate.FieldDataResult, error)
	ExpiringSoon(ctx context.Context, days int) ([]compliance.ExpiringPerson, error)
	RevalidateAll(ctx context.Context) (*compliance.RevalidationSummary, error)
}

// Handler wires compliance endpoints to the compliance service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a compliance handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts compliance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/persons/{personID}/validate", h.HandleValidatePerson)
	r.Route("/validation", func(r chi.Router) {
		r.Post("/field-data", h.HandleValidateFieldData)
		r.Get("/expiring", h.HandleExpiring)
		r.Post("/revalidate", h.HandleRevalidate)
	})
}

// HandleValidatePerson handles POST /persons/{personID}/validate requests.
func (h *Handler) HandleValidatePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	if !h.permitted(w, ctx, identitymodels.PermPersonsUpdate) {
		return
	}

	personID, err := id.ParsePersonID(chi.URLParam(r, "personID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	report, err := h.service.ValidatePerson(ctx, personID)
	if err != nil {
		h.logger.WarnContext(ctx, "person validation failed",
			"request_id", requestID,
			"person_id", personID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "person validated",
		"request_id", requestID,
		"person_id", personID,
		"status", report.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromReport(report))
}

// HandleValidateFieldData handles POST /validation/field-data requests:
// pre-save format validation of an attribute map without a person context.
func (h *Handler) HandleValidateFieldData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !h.permitted(w, ctx, identitymodels.PermPersonsRead) {
		return
	}

	req, ok := httputil.DecodeAndPrepare[FieldDataRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.ValidateFieldData(ctx, req.FieldData)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleExpiring handles GET /validation/expiring requests. The optional
// days query parameter sets the lookahead window.
func (h *Handler) HandleExpiring(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.permitted(w, ctx, identitymodels.PermDashboardExpiringDocuments) {
		return
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "days must be a non-negative integer"))
			return
		}
		days = parsed
	}

	expiring, err := h.service.ExpiringSoon(ctx, days)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromExpiring(expiring))
}

// HandleRevalidate handles POST /validation/revalidate requests: a full
// sweep over every active person.
func (h *Handler) HandleRevalidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	if !h.permitted(w, ctx, identitymodels.PermPersonsUpdate) {
		return
	}

	summary, err := h.service.RevalidateAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "revalidation sweep failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "revalidation sweep completed",
		"request_id", requestID,
		"total", summary.Total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// permitted enforces the permission when an actor is present; requests
// without an actor pass through so auth stays a middleware concern.
func (h *Handler) permitted(w http.ResponseWriter, ctx context.Context, perm identitymodels.Permission) bool {
	actor := requestcontext.Actor(ctx)
	if actor == nil || actor.HasPermission(perm) {
		return true
	}
	httputil.WriteError(w, dErrors.Newf(dErrors.CodeForbidden, "missing permission %s", perm))
	return false
}
