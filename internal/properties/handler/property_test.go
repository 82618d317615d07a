package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "rentals/pkg/errors"
	"rentals/pkg/logger"
	"rentals/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockPropertyService struct {
	searchFunc       func(ctx context.Context, criteria *model.PropertySearch) (*model.SearchResult, error)
	getDetailFunc    func(ctx context.Context, id string) (*model.PropertyDetail, error)
	contactFunc      func(ctx context.Context, id string) (*model.OwnerContact, error)
	uploadFunc       func(ctx context.Context, upload *model.PropertyUpload) (*model.Property, error)
	changeStatusFunc func(ctx context.Context, id string, to model.PropertyStatus) (*model.Property, error)
	deleteOwnFunc    func(ctx context.Context, id string) error
}

func (m *mockPropertyService) Search(ctx context.Context, criteria *model.PropertySearch) (*model.SearchResult, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, criteria)
	}
	return &model.SearchResult{}, nil
}

func (m *mockPropertyService) GetDetail(ctx context.Context, id string) (*model.PropertyDetail, error) {
	if m.getDetailFunc != nil {
		return m.getDetailFunc(ctx, id)
	}
	return &model.PropertyDetail{}, nil
}

func (m *mockPropertyService) FindSimilar(ctx context.Context, id string) ([]*model.Property, error) {
	return nil, nil
}

func (m *mockPropertyService) OwnerContact(ctx context.Context, id string) (*model.OwnerContact, error) {
	if m.contactFunc != nil {
		return m.contactFunc(ctx, id)
	}
	return &model.OwnerContact{}, nil
}

func (m *mockPropertyService) Upload(ctx context.Context, upload *model.PropertyUpload) (*model.Property, error) {
	if m.uploadFunc != nil {
		return m.uploadFunc(ctx, upload)
	}
	return &model.Property{}, nil
}

func (m *mockPropertyService) ListOwn(ctx context.Context, page, limit int) (*model.PropertyList, error) {
	return &model.PropertyList{}, nil
}

func (m *mockPropertyService) GetOwn(ctx context.Context, id string) (*model.Property, error) {
	return &model.Property{}, nil
}

func (m *mockPropertyService) UpdateOwn(ctx context.Context, id string, update *model.PropertyUpdate) (*model.Property, error) {
	return &model.Property{}, nil
}

func (m *mockPropertyService) DeleteOwn(ctx context.Context, id string) error {
	if m.deleteOwnFunc != nil {
		return m.deleteOwnFunc(ctx, id)
	}
	return nil
}

func (m *mockPropertyService) ListAll(ctx context.Context, status model.PropertyStatus, page, limit int) (*model.PropertyList, error) {
	return &model.PropertyList{}, nil
}

func (m *mockPropertyService) ChangeStatus(ctx context.Context, id string, to model.PropertyStatus) (*model.Property, error) {
	if m.changeStatusFunc != nil {
		return m.changeStatusFunc(ctx, id, to)
	}
	return &model.Property{}, nil
}

func (m *mockPropertyService) Review(ctx context.Context, id string, to model.PropertyStatus) (*model.Property, error) {
	return &model.Property{}, nil
}

func (m *mockPropertyService) Publish(ctx context.Context, id string) (*model.Property, error) {
	return &model.Property{}, nil
}

func (m *mockPropertyService) MarkSold(ctx context.Context, id string) (*model.Property, error) {
	return &model.Property{}, nil
}

func newTestHandler(svc *mockPropertyService) (*PropertyHandler, *httprouter.Router) {
	h := NewPropertyHandler(svc, logger.Discard(), 10)
	router := httprouter.New()
	h.RegisterRoutes(router)
	return h, router
}

// ────────────────────────────────────────────────────────────────────────────
// Search query parsing
// ────────────────────────────────────────────────────────────────────────────

func TestSearch_ParsesQuery(t *testing.T) {
	var got *model.PropertySearch
	_, router := newTestHandler(&mockPropertyService{
		searchFunc: func(ctx context.Context, criteria *model.PropertySearch) (*model.SearchResult, error) {
			got = criteria
			return &model.SearchResult{}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/properties?search=sea+view&min_rent=1000&max_rent=2500.5&property_type=villa&bedrooms=3&city=Goa&amenities=pool,gym&amenities=wifi&sort_by=rent_asc&page=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got == nil {
		t.Fatal("service was not called")
	}
	if got.Query != "sea view" || got.City != "Goa" || got.PropertyType != model.Villa {
		t.Errorf("unexpected text criteria: %+v", got)
	}
	if got.Rent.Min == nil || *got.Rent.Min != 1000 || got.Rent.Max == nil || *got.Rent.Max != 2500.5 {
		t.Errorf("unexpected rent range: %+v", got.Rent)
	}
	if got.Deposit.Min != nil || got.Area.Max != nil {
		t.Error("absent ranges should stay nil")
	}
	if got.Bedrooms == nil || *got.Bedrooms != 3 || got.Bathrooms != nil {
		t.Errorf("unexpected room criteria: bedrooms=%v bathrooms=%v", got.Bedrooms, got.Bathrooms)
	}
	if strings.Join(got.Amenities, ",") != "pool,gym,wifi" {
		t.Errorf("unexpected amenities: %v", got.Amenities)
	}
	if got.SortBy != model.SortRentAsc || got.Page != 2 || got.Limit != 10 {
		t.Errorf("unexpected paging: sort=%s page=%d limit=%d", got.SortBy, got.Page, got.Limit)
	}
}

func TestSearch_MalformedNumbers(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "alphabetic rent", query: "min_rent=cheap"},
		{name: "alphabetic bedrooms", query: "bedrooms=many"},
		{name: "alphabetic page", query: "page=first"},
		{name: "alphabetic limit", query: "limit=all"},
		{name: "NaN rent", query: "min_rent=NaN"},
		{name: "infinite rent", query: "max_rent=Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			_, router := newTestHandler(&mockPropertyService{
				searchFunc: func(ctx context.Context, criteria *model.PropertySearch) (*model.SearchResult, error) {
					called = true
					return &model.SearchResult{}, nil
				},
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/properties?"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
			if called {
				t.Error("service should not be called for malformed input")
			}
		})
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Error mapping and routing
// ────────────────────────────────────────────────────────────────────────────

func TestGetDetail_ErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		expectCode int
	}{
		{name: "not found", err: apperrors.NotFound("Property not found"), expectCode: http.StatusNotFound},
		{name: "internal", err: apperrors.Internal("boom", nil), expectCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, router := newTestHandler(&mockPropertyService{
				getDetailFunc: func(ctx context.Context, id string) (*model.PropertyDetail, error) {
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/id/65a000000000000000000001", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectCode {
				t.Errorf("expected %d, got %d", tt.expectCode, w.Code)
			}
		})
	}
}

func TestOwnerContact_Route(t *testing.T) {
	var gotID string
	_, router := newTestHandler(&mockPropertyService{
		contactFunc: func(ctx context.Context, id string) (*model.OwnerContact, error) {
			gotID = id
			return &model.OwnerContact{PropertyID: id, Name: "Ravi", Email: "ravi@example.com"}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/id/65a000000000000000000001/contact", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotID != "65a000000000000000000001" {
		t.Errorf("id = %q", gotID)
	}
	var resp struct {
		Data model.OwnerContact `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Email != "ravi@example.com" {
		t.Errorf("unexpected contact: %+v", resp.Data)
	}
}

func TestUpload_Created(t *testing.T) {
	var received *model.PropertyUpload
	_, router := newTestHandler(&mockPropertyService{
		uploadFunc: func(ctx context.Context, upload *model.PropertyUpload) (*model.Property, error) {
			received = upload
			return &model.Property{ID: "65a000000000000000000001", Title: upload.Title, Status: model.PropertyPending}, nil
		},
	})

	body := `{"title":"Loft","description":"Bright loft near the park","property_type":"apartment","rent":1200}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/owner/properties", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if received == nil || received.Title != "Loft" {
		t.Fatalf("unexpected upload: %+v", received)
	}

	var resp struct {
		Data model.Property `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Status != model.PropertyPending {
		t.Errorf("expected pending status, got %s", resp.Data.Status)
	}
}

func TestUpload_RejectsUnknownFields(t *testing.T) {
	_, router := newTestHandler(&mockPropertyService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/owner/properties", strings.NewReader(`{"title":"Loft","status":"published"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestChangeStatus_PassesTarget(t *testing.T) {
	var gotID string
	var gotStatus model.PropertyStatus
	_, router := newTestHandler(&mockPropertyService{
		changeStatusFunc: func(ctx context.Context, id string, to model.PropertyStatus) (*model.Property, error) {
			gotID, gotStatus = id, to
			return &model.Property{ID: id, Status: to}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/properties/id/abc/status", strings.NewReader(`{"status":"published"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotID != "abc" || gotStatus != model.PropertyPublished {
		t.Errorf("unexpected call: id=%s status=%s", gotID, gotStatus)
	}
}

func TestDeleteOwn_NoContent(t *testing.T) {
	_, router := newTestHandler(&mockPropertyService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/owner/properties/id/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
}
