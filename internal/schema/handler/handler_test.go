package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	identitymodels "siteguard/internal/identity/models"
	"siteguard/internal/schema/service"
	"siteguard/internal/schema/store"
	id "siteguard/pkg/domain"
	"siteguard/pkg/requestcontext"
)

func newFieldRouter(t *testing.T, actor *identitymodels.Actor) http.Handler {
	t.Helper()
	svc := service.New(store.NewInMemory())
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	h := New(svc, logger)
	r := chi.NewRouter()
	if actor != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(requestcontext.WithActor(req.Context(), actor)))
			})
		})
	}
	h.Register(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createField(t *testing.T, router http.Handler, payload map[string]any) *FieldResponse {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/fields", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating field, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp FieldResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode field response: %v", err)
	}
	if resp.ID == "" {
		t.Fatalf("expected field id in response")
	}
	return &resp
}

func TestCreateFieldViaHandler(t *testing.T) {
	router := newFieldRouter(t, nil)

	resp := createField(t, router, map[string]any{
		"name":          "safety_training",
		"label":         "Safety Training",
		"field_type":    "date_expiry",
		"category":      "qualifications",
		"is_required":   true,
		"configuration": map[string]any{"warning_days": 60},
		"compliance_rules": map[string]any{
			"check_type":    "date_not_expired",
			"warning_days":  60,
			"error_message": "Training has expired",
		},
	})

	if resp.Name != "safety_training" || resp.FieldType != "date_expiry" {
		t.Fatalf("unexpected field in response: %+v", resp)
	}
	if resp.ComplianceRule == nil || resp.ComplianceRule.ErrorMessage != "Training has expired" {
		t.Fatalf("expected compliance rule to round-trip, got %+v", resp.ComplianceRule)
	}
}

func TestCreateFieldRejectsBadInput(t *testing.T) {
	router := newFieldRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/fields", map[string]any{"field_type": "text"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/fields", map[string]any{
		"name":       "blood_type",
		"field_type": "blood",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field type, got %d", rec.Code)
	}

	createField(t, router, map[string]any{"name": "helmet_size", "field_type": "text"})
	rec = doJSON(t, router, http.MethodPost, "/fields", map[string]any{
		"name":       "helmet_size",
		"field_type": "text",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate name, got %d", rec.Code)
	}
}

func TestUpdateFieldViaHandler(t *testing.T) {
	router := newFieldRouter(t, nil)
	created := createField(t, router, map[string]any{
		"name":       "medical_cert",
		"field_type": "date_expiry",
		"compliance_rules": map[string]any{
			"check_type": "date_not_expired",
		},
	})

	rec := doJSON(t, router, http.MethodPut, "/fields/"+created.ID, map[string]any{
		"label":            "Medical Certificate",
		"compliance_rules": nil,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 updating field, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated FieldResponse
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("failed to decode update response: %v", err)
	}
	if updated.Label != "Medical Certificate" {
		t.Fatalf("expected label update, got %q", updated.Label)
	}
	if updated.ComplianceRule != nil {
		t.Fatalf("expected explicit null to clear the compliance rule")
	}

	// The field type is fixed at creation.
	rec = doJSON(t, router, http.MethodPut, "/fields/"+created.ID, map[string]any{
		"field_type": "text",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for type change, got %d", rec.Code)
	}

	// Sending the stored type back is not a change.
	rec = doJSON(t, router, http.MethodPut, "/fields/"+created.ID, map[string]any{
		"field_type": "date_expiry",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 when type matches, got %d", rec.Code)
	}
}

func TestDeleteFieldViaHandler(t *testing.T) {
	router := newFieldRouter(t, nil)
	created := createField(t, router, map[string]any{"name": "notes", "field_type": "textarea"})

	rec := doJSON(t, router, http.MethodDelete, "/fields/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 deleting field, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/fields/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after deletion, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/fields/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed field id, got %d", rec.Code)
	}
}

func TestListFieldsWithFilters(t *testing.T) {
	router := newFieldRouter(t, nil)
	createField(t, router, map[string]any{"name": "first_name", "field_type": "text", "is_required": true, "is_searchable": true})
	createField(t, router, map[string]any{"name": "shoe_size", "field_type": "number"})

	rec := doJSON(t, router, http.MethodGet, "/fields", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing fields, got %d", rec.Code)
	}
	var list ListResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("expected 2 fields, got %d", list.Total)
	}

	rec = doJSON(t, router, http.MethodGet, "/fields?filter=required", nil)
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode filtered response: %v", err)
	}
	if list.Total != 1 || list.Fields[0].Name != "first_name" {
		t.Fatalf("expected only the required field, got %+v", list.Fields)
	}

	rec = doJSON(t, router, http.MethodGet, "/fields?filter=shiny", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown filter, got %d", rec.Code)
	}
}

func TestMetadataEndpoint(t *testing.T) {
	router := newFieldRouter(t, nil)

	rec := doJSON(t, router, http.MethodGet, "/fields/metadata", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from metadata, got %d", rec.Code)
	}
	var meta MetadataResponse
	if err := json.NewDecoder(rec.Body).Decode(&meta); err != nil {
		t.Fatalf("failed to decode metadata: %v", err)
	}
	if !contains(meta.FieldTypes, "date_expiry") {
		t.Fatalf("expected date_expiry in field types, got %v", meta.FieldTypes)
	}
	if !contains(meta.CheckTypes, "date_not_expired") {
		t.Fatalf("expected date_not_expired in check types, got %v", meta.CheckTypes)
	}
	if !contains(meta.ConditionOperators, "is_not_empty") {
		t.Fatalf("expected is_not_empty in operators, got %v", meta.ConditionOperators)
	}
}

func TestVisibilityEndpoint(t *testing.T) {
	router := newFieldRouter(t, nil)
	controller := createField(t, router, map[string]any{"name": "has_vehicle", "field_type": "checkbox"})
	dependent := createField(t, router, map[string]any{
		"name":       "license_plate",
		"field_type": "text",
		"show_when": map[string]any{
			"field_id": controller.ID,
			"operator": "equals",
			"value":    true,
		},
	})

	rec := doJSON(t, router, http.MethodPost, "/fields/visibility", map[string]any{
		"field_data": map[string]any{controller.ID: true},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from visibility, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp VisibilityResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode visibility response: %v", err)
	}
	if !resp.Visibility[dependent.ID] {
		t.Fatalf("expected dependent field shown when controller is true")
	}

	rec = doJSON(t, router, http.MethodPost, "/fields/visibility", map[string]any{
		"field_data": map[string]any{controller.ID: false},
	})
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode visibility response: %v", err)
	}
	if resp.Visibility[dependent.ID] {
		t.Fatalf("expected dependent field hidden when controller is false")
	}
}

func TestPermissionsEnforcedWhenActorPresent(t *testing.T) {
	scanner := &identitymodels.Actor{
		ID: id.NewUserID(),
		Roles: []*identitymodels.Role{{
			ID:          id.NewRoleID(),
			Name:        "scanner",
			Permissions: map[identitymodels.Permission]bool{identitymodels.PermFieldsRead: true},
		}},
	}
	router := newFieldRouter(t, scanner)

	rec := doJSON(t, router, http.MethodGet, "/fields", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for permitted read, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/fields", map[string]any{
		"name":       "badge_number",
		"field_type": "text",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unpermitted create, got %d", rec.Code)
	}
}

func TestCapabilityRestrictsListing(t *testing.T) {
	// Shared backing store, two routers: an unrestricted one to create the
	// fields, a restricted one to read them.
	svc := service.New(store.NewInMemory())
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := New(svc, logger)

	adminRouter := chi.NewRouter()
	h.Register(adminRouter)

	visible := createField(t, adminRouter, map[string]any{"name": "first_name", "field_type": "text"})
	hidden := createField(t, adminRouter, map[string]any{"name": "salary", "field_type": "number"})

	actor := &identitymodels.Actor{
		ID: id.NewUserID(),
		Roles: []*identitymodels.Role{{
			ID:            id.NewRoleID(),
			Name:          "restricted",
			Permissions:   map[identitymodels.Permission]bool{identitymodels.PermFieldsRead: true},
			VisibleFields: []string{visible.ID},
		}},
	}
	restricted := chi.NewRouter()
	restricted.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(requestcontext.WithActor(req.Context(), actor)))
		})
	})
	h.Register(restricted)

	rec := doJSON(t, restricted, http.MethodGet, "/fields", nil)
	var list ListResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if list.Total != 1 || list.Fields[0].ID != visible.ID {
		t.Fatalf("expected only the granted field, got %+v", list.Fields)
	}

	rec = doJSON(t, restricted, http.MethodGet, "/fields/"+hidden.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for field outside view capability, got %d", rec.Code)
	}
}

func TestCapabilitiesEndpoint(t *testing.T) {
	anonymous := newFieldRouter(t, nil)
	rec := doJSON(t, anonymous, http.MethodGet, "/fields/capabilities", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var caps CapabilitiesResponse
	if err := json.NewDecoder(rec.Body).Decode(&caps); err != nil {
		t.Fatalf("failed to decode capabilities response: %v", err)
	}
	if !caps.View.All || !caps.Edit.All {
		t.Fatalf("expected anonymous capabilities to be unrestricted, got %+v", caps)
	}

	granted := id.NewFieldID().String()
	actor := &identitymodels.Actor{
		ID: id.NewUserID(),
		Roles: []*identitymodels.Role{{
			ID:            id.NewRoleID(),
			Name:          "restricted",
			Permissions:   map[identitymodels.Permission]bool{identitymodels.PermFieldsRead: true},
			VisibleFields: []string{granted},
		}},
	}
	restricted := newFieldRouter(t, actor)
	rec = doJSON(t, restricted, http.MethodGet, "/fields/capabilities", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	caps = CapabilitiesResponse{}
	if err := json.NewDecoder(rec.Body).Decode(&caps); err != nil {
		t.Fatalf("failed to decode capabilities response: %v", err)
	}
	if caps.View.All || len(caps.View.FieldIDs) != 1 || caps.View.FieldIDs[0] != granted {
		t.Fatalf("expected view capability limited to the granted field, got %+v", caps.View)
	}
	// No edit grants anywhere resolves open.
	if !caps.Edit.All {
		t.Fatalf("expected edit capability to stay unrestricted, got %+v", caps.Edit)
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
