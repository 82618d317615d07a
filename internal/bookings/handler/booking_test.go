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

type mockBookingService struct {
	createFunc    func(ctx context.Context, create *model.BookingCreate) (*model.Booking, error)
	respondFunc   func(ctx context.Context, id string, response *model.TimeChangeResponse) (*model.Booking, error)
	analyticsFunc func(ctx context.Context, top int) (*model.BookingAnalytics, error)
}

func (m *mockBookingService) Create(ctx context.Context, create *model.BookingCreate) (*model.Booking, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, create)
	}
	return &model.Booking{}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) List(ctx context.Context, page, limit int) (*model.BookingList, error) {
	return &model.BookingList{}, nil
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
	return &model.Booking{ID: id, Status: status}, nil
}

func (m *mockBookingService) UpdateTime(ctx context.Context, id string, update *model.BookingTimeUpdate) (*model.Booking, error) {
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) RequestTimeChange(ctx context.Context, id string, proposal *model.TimeChangeProposal) (*model.Booking, error) {
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) RespondTimeChange(ctx context.Context, id string, response *model.TimeChangeResponse) (*model.Booking, error) {
	if m.respondFunc != nil {
		return m.respondFunc(ctx, id, response)
	}
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) Analytics(ctx context.Context, top int) (*model.BookingAnalytics, error) {
	if m.analyticsFunc != nil {
		return m.analyticsFunc(ctx, top)
	}
	return &model.BookingAnalytics{}, nil
}

func newRouter(svc *mockBookingService) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, logger.Discard(), 10).RegisterRoutes(router)
	return router
}

func TestCreate_DecodesVisitDate(t *testing.T) {
	var got *model.BookingCreate
	router := newRouter(&mockBookingService{
		createFunc: func(ctx context.Context, create *model.BookingCreate) (*model.Booking, error) {
			got = create
			return &model.Booking{ID: "b1", Status: model.BookingPending}, nil
		},
	})

	body := `{"property_id":"65a000000000000000000001","visit_date":"2026-11-02T00:00:00Z","time_slot":"10:00-11:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if got == nil || got.VisitDate.Day() != 2 || got.TimeSlot != "10:00-11:00" {
		t.Errorf("unexpected create: %+v", got)
	}
}

func TestRespondTimeChange_ConflictCarriesOptions(t *testing.T) {
	router := newRouter(&mockBookingService{
		respondFunc: func(ctx context.Context, id string, response *model.TimeChangeResponse) (*model.Booking, error) {
			return nil, apperrors.Conflict("Selected time slot was not offered").
				WithDetails(map[string]any{"valid_options": []string{"10:00", "14:00"}})
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/b1/time-change/respond",
		strings.NewReader(`{"accept":true,"new_time_slot":"09:00"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"valid_options":["10:00","14:00"]`) {
		t.Errorf("response should echo valid options: %s", w.Body.String())
	}
}

func TestAnalytics_TopParameter(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		expectCode int
		expectTop  int
	}{
		{name: "default", query: "", expectCode: http.StatusOK, expectTop: 0},
		{name: "explicit", query: "?top=3", expectCode: http.StatusOK, expectTop: 3},
		{name: "malformed", query: "?top=three", expectCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotTop := -1
			router := newRouter(&mockBookingService{
				analyticsFunc: func(ctx context.Context, top int) (*model.BookingAnalytics, error) {
					gotTop = top
					return &model.BookingAnalytics{TotalBookings: 7}, nil
				},
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/bookings/analytics"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d", tt.expectCode, w.Code)
			}
			if tt.expectCode != http.StatusOK {
				return
			}
			if gotTop != tt.expectTop {
				t.Errorf("top = %d, want %d", gotTop, tt.expectTop)
			}
			var resp struct {
				Data model.BookingAnalytics `json:"data"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Data.TotalBookings != 7 {
				t.Errorf("total_bookings = %d", resp.Data.TotalBookings)
			}
		})
	}
}
