// Package handler exposes the field schema registry over HTTP.
//
// Authentication is middleware's concern: handlers read the actor from the
// request context and enforce permissions only when an actor is present, so
// a deployment running without the identity layer behaves default-open.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"siteguard/internal/capability"
	identitymodels "siteguard/internal/identity/models"
	"siteguard/internal/schema/models"
	"siteguard/internal/schema/service"
	"siteguard/internal/schema/visibility"
	id "siteguard/pkg/domain"
	dErrors "siteguard/pkg/domain-errors"
	"siteguard/pkg/platform/httputil"
	"siteguard/pkg/requestcontext"
)

// Service defines the interface for field registry operations.
type Service interface {
	Create(ctx context.Context, req service.CreateField) (*models.FieldDefinition, error)
	Update(ctx context.Context, fieldID id.FieldID, req service.UpdateField) (*models.FieldDefinition, error)
	Delete(ctx context.Context, fieldID id.FieldID) error
	GetByID(ctx context.Context, fieldID id.FieldID) (*models.FieldDefinition, error)
	ListAll(ctx context.Context) ([]*models.FieldDefinition, error)
	ListRequired(ctx context.Context) ([]*models.FieldDefinition, error)
	ListSearchable(ctx context.Context) ([]*models.FieldDefinition, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// Handler wires field registry endpoints to the schema service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a schema handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts field registry endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/fields", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/metadata", h.HandleMetadata)
		r.Get("/categories", h.HandleCategories)
		r.Get("/capabilities", h.HandleCapabilities)
		r.Post("/visibility", h.HandleVisibility)
		r.Route("/{fieldID}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleUpdate)
			r.Delete("/", h.HandleDelete)
		})
	})
}

// HandleCreate handles POST /fields requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !h.permitted(w, ctx, identitymodels.PermFieldsCreate) {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateFieldRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	field, err := h.service.Create(ctx, req.ToCommand())
	if err != nil {
		h.logger.WarnContext(ctx, "field creation failed",
			"request_id", requestID,
			"field_name", req.Name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "field created",
		"request_id", requestID,
		"field_id", field.ID,
		"field_name", field.Name,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromField(field))
}

// HandleList handles GET /fields requests. The optional filter query
// parameter narrows the listing to required or searchable definitions; the
// result is always restricted to the fields the actor may view.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.permitted(w, ctx, identitymodels.PermFieldsRead) {
		return
	}

	var (
		fields []*models.FieldDefinition
		err    error
	)
	switch filter := r.URL.Query().Get("filter"); filter {
	case "":
		fields, err = h.service.ListAll(ctx)
	case "required":
		fields, err = h.service.ListRequired(ctx)
	case "searchable":
		fields, err = h.service.ListSearchable(ctx)
	default:
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeInvalidInput, "unknown filter %q", filter))
		return
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	fields = capability.Filter(fields, requestcontext.Actor(ctx), capability.View)
	httputil.WriteJSON(w, http.StatusOK, FromFields(fields))
}

// HandleGet handles GET /fields/{fieldID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.permitted(w, ctx, identitymodels.PermFieldsRead) {
		return
	}

	fieldID, ok := h.fieldID(w, r)
	if !ok {
		return
	}

	field, err := h.service.GetByID(ctx, fieldID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// A field outside the actor's view capability reads as absent rather
	// than forbidden, so grant lists never reveal what they hide.
	if actor := requestcontext.Actor(ctx); actor != nil {
		if !capability.Resolve(actor, capability.View).Contains(field.ID) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "field not found"))
			return
		}
	}

	httputil.WriteJSON(w, http.StatusOK, FromField(field))
}

// HandleUpdate handles PUT /fields/{fieldID} requests.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !h.permitted(w, ctx, identitymodels.PermFieldsUpdate) {
		return
	}

	fieldID, ok := h.fieldID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateFieldRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	field, err := h.service.Update(ctx, fieldID, req.ToCommand())
	if err != nil {
		h.logger.WarnContext(ctx, "field update failed",
			"request_id", requestID,
			"field_id", fieldID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromField(field))
}

// HandleDelete handles DELETE /fields/{fieldID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !h.permitted(w, ctx, identitymodels.PermFieldsDelete) {
		return
	}

	fieldID, ok := h.fieldID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, fieldID); err != nil {
		h.logger.WarnContext(ctx, "field deletion failed",
			"request_id", requestID,
			"field_id", fieldID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleCategories handles GET /fields/categories requests.
func (h *Handler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.permitted(w, ctx, identitymodels.PermFieldsRead) {
		return
	}

	categories, err := h.service.ListCategories(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, &CategoriesResponse{Categories: categories})
}

// HandleMetadata handles GET /fields/metadata requests: the closed
// vocabularies for building the field editor.
func (h *Handler) HandleMetadata(w http.ResponseWriter, r *http.Request) {
	resp := &MetadataResponse{}
	for _, t := range models.FieldTypes() {
		resp.FieldTypes = append(resp.FieldTypes, string(t))
	}
	for _, c := range models.CheckTypes() {
		resp.CheckTypes = append(resp.CheckTypes, string(c))
	}
	for _, op := range models.ConditionOperators() {
		resp.ConditionOperators = append(resp.ConditionOperators, string(op))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleCapabilities handles GET /fields/capabilities requests: the calling
// actor's effective view and edit field sets. Anonymous requests resolve as
// unrestricted, matching list filtering.
func (h *Handler) HandleCapabilities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.permitted(w, ctx, identitymodels.PermFieldsRead) {
		return
	}

	actor := requestcontext.Actor(ctx)
	view := capability.AllFields()
	edit := capability.AllFields()
	if actor != nil {
		view = capability.Resolve(actor, capability.View)
		edit = capability.Resolve(actor, capability.Edit)
	}
	httputil.WriteJSON(w, http.StatusOK, FromCapabilities(view, edit))
}

// HandleVisibility handles POST /fields/visibility requests: given a
// person's current field data, report which definitions their show_when
// conditions reveal. Only fields the actor may view are evaluated.
func (h *Handler) HandleVisibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !h.permitted(w, ctx, identitymodels.PermFieldsRead) {
		return
	}

	req, ok := httputil.DecodeAndPrepare[VisibilityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	fields, err := h.service.ListAll(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	fields = capability.Filter(fields, requestcontext.Actor(ctx), capability.View)

	shown := visibility.Evaluate(fields, req.FieldData)
	resp := &VisibilityResponse{Visibility: make(map[string]bool, len(shown))}
	for fieldID, visible := range shown {
		resp.Visibility[fieldID.String()] = visible
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) fieldID(w http.ResponseWriter, r *http.Request) (id.FieldID, bool) {
	fieldID, err := id.ParseFieldID(chi.URLParam(r, "fieldID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.FieldID{}, false
	}
	return fieldID, true
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
