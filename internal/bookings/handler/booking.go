package handler

import (
	"net/http"

	"rentals/internal/bookings/service"
	httputil "rentals/pkg/http"
	"rentals/pkg/logger"
	"rentals/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service      service.BookingService
	log          *logger.Logger
	defaultLimit int
}

func NewBookingHandler(service service.BookingService, log *logger.Logger, defaultLimit int) *BookingHandler {
	return &BookingHandler{
		service:      service,
		log:          log,
		defaultLimit: defaultLimit,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var create model.BookingCreate
	if err := httputil.DecodeJSON(r, &create); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), &create)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r, h.defaultLimit)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	list, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	h.writeSuccess(w, "List", list)
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	h.writeSuccess(w, "GetByID", booking)
}

func (h *BookingHandler) UpdateTime(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.BookingTimeUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateTime", err)
		return
	}

	booking, err := h.service.UpdateTime(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateTime", err)
		return
	}

	h.writeSuccess(w, "UpdateTime", booking)
}

func (h *BookingHandler) RespondTimeChange(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var response model.TimeChangeResponse
	if err := httputil.DecodeJSON(r, &response); err != nil {
		h.writeError(w, "RespondTimeChange", err)
		return
	}

	booking, err := h.service.RespondTimeChange(r.Context(), ps.ByName("id"), &response)
	if err != nil {
		h.writeError(w, "RespondTimeChange", err)
		return
	}

	h.writeSuccess(w, "RespondTimeChange", booking)
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var change model.BookingStatusChange
	if err := httputil.DecodeJSON(r, &change); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), change.Status)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	h.writeSuccess(w, "UpdateStatus", booking)
}

func (h *BookingHandler) RequestTimeChange(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var proposal model.TimeChangeProposal
	if err := httputil.DecodeJSON(r, &proposal); err != nil {
		h.writeError(w, "RequestTimeChange", err)
		return
	}

	booking, err := h.service.RequestTimeChange(r.Context(), ps.ByName("id"), &proposal)
	if err != nil {
		h.writeError(w, "RequestTimeChange", err)
		return
	}

	h.writeSuccess(w, "RequestTimeChange", booking)
}

func (h *BookingHandler) Analytics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	top, err := httputil.QueryInt(r.URL.Query(), "top", 0)
	if err != nil {
		h.writeError(w, "Analytics", err)
		return
	}

	analytics, err := h.service.Analytics(r.Context(), top)
	if err != nil {
		h.writeError(w, "Analytics", err)
		return
	}

	h.writeSuccess(w, "Analytics", analytics)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.List)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id/time", h.UpdateTime)
	router.POST("/api/v1/bookings/id/:id/time-change/respond", h.RespondTimeChange)

	router.PATCH("/api/v1/admin/bookings/id/:id/status", h.UpdateStatus)
	router.POST("/api/v1/admin/bookings/id/:id/time-change", h.RequestTimeChange)
	router.GET("/api/v1/admin/bookings/analytics", h.Analytics)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}
