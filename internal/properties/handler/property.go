package handler

import (
	"net/http"
	"net/url"

	"rentals/internal/properties/service"
	httputil "rentals/pkg/http"
	"rentals/pkg/logger"
	"rentals/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PropertyHandler struct {
	service      service.PropertyService
	log          *logger.Logger
	defaultLimit int
}

func NewPropertyHandler(service service.PropertyService, log *logger.Logger, defaultLimit int) *PropertyHandler {
	return &PropertyHandler{
		service:      service,
		log:          log,
		defaultLimit: defaultLimit,
	}
}

func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	criteria, err := parseSearch(r.URL.Query(), h.defaultLimit)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	result, err := h.service.Search(r.Context(), criteria)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	h.writeSuccess(w, "Search", result)
}

func (h *PropertyHandler) GetDetail(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	detail, err := h.service.GetDetail(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetDetail", err)
		return
	}

	h.writeSuccess(w, "GetDetail", detail)
}

func (h *PropertyHandler) Similar(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	similar, err := h.service.FindSimilar(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Similar", err)
		return
	}

	h.writeSuccess(w, "Similar", similar)
}

func (h *PropertyHandler) OwnerContact(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	contact, err := h.service.OwnerContact(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "OwnerContact", err)
		return
	}

	h.writeSuccess(w, "OwnerContact", contact)
}

func (h *PropertyHandler) Upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var upload model.PropertyUpload
	if err := httputil.DecodeJSON(r, &upload); err != nil {
		h.writeError(w, "Upload", err)
		return
	}

	property, err := h.service.Upload(r.Context(), &upload)
	if err != nil {
		h.writeError(w, "Upload", err)
		return
	}

	if err := httputil.WriteCreated(w, property); err != nil {
		h.log.Error("failed to write created response", "handler", "Upload", "operation", "WriteCreated", "error", err)
	}
}

func (h *PropertyHandler) ListOwn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r, h.defaultLimit)
	if err != nil {
		h.writeError(w, "ListOwn", err)
		return
	}

	list, err := h.service.ListOwn(r.Context(), page, limit)
	if err != nil {
		h.writeError(w, "ListOwn", err)
		return
	}

	h.writeSuccess(w, "ListOwn", list)
}

func (h *PropertyHandler) GetOwn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	property, err := h.service.GetOwn(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetOwn", err)
		return
	}

	h.writeSuccess(w, "GetOwn", property)
}

func (h *PropertyHandler) UpdateOwn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.PropertyUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateOwn", err)
		return
	}

	property, err := h.service.UpdateOwn(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateOwn", err)
		return
	}

	h.writeSuccess(w, "UpdateOwn", property)
}

func (h *PropertyHandler) DeleteOwn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteOwn(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteOwn", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PropertyHandler) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r, h.defaultLimit)
	if err != nil {
		h.writeError(w, "ListAll", err)
		return
	}
	status := model.PropertyStatus(r.URL.Query().Get("status"))

	list, err := h.service.ListAll(r.Context(), status, page, limit)
	if err != nil {
		h.writeError(w, "ListAll", err)
		return
	}

	h.writeSuccess(w, "ListAll", list)
}

func (h *PropertyHandler) ChangeStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var change model.PropertyStatusChange
	if err := httputil.DecodeJSON(r, &change); err != nil {
		h.writeError(w, "ChangeStatus", err)
		return
	}

	property, err := h.service.ChangeStatus(r.Context(), ps.ByName("id"), change.Status)
	if err != nil {
		h.writeError(w, "ChangeStatus", err)
		return
	}

	h.writeSuccess(w, "ChangeStatus", property)
}

func (h *PropertyHandler) Review(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var change model.PropertyStatusChange
	if err := httputil.DecodeJSON(r, &change); err != nil {
		h.writeError(w, "Review", err)
		return
	}

	property, err := h.service.Review(r.Context(), ps.ByName("id"), change.Status)
	if err != nil {
		h.writeError(w, "Review", err)
		return
	}

	h.writeSuccess(w, "Review", property)
}

func (h *PropertyHandler) Publish(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	property, err := h.service.Publish(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Publish", err)
		return
	}

	h.writeSuccess(w, "Publish", property)
}

func (h *PropertyHandler) MarkSold(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	property, err := h.service.MarkSold(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "MarkSold", err)
		return
	}

	h.writeSuccess(w, "MarkSold", property)
}

func (h *PropertyHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/properties", h.Search)
	router.GET("/api/v1/properties/id/:id", h.GetDetail)
	router.GET("/api/v1/properties/id/:id/similar", h.Similar)
	router.GET("/api/v1/properties/id/:id/contact", h.OwnerContact)

	router.POST("/api/v1/owner/properties", h.Upload)
	router.GET("/api/v1/owner/properties", h.ListOwn)
	router.GET("/api/v1/owner/properties/id/:id", h.GetOwn)
	router.PATCH("/api/v1/owner/properties/id/:id", h.UpdateOwn)
	router.DELETE("/api/v1/owner/properties/id/:id", h.DeleteOwn)

	router.GET("/api/v1/admin/properties", h.ListAll)
	router.PATCH("/api/v1/admin/properties/id/:id/status", h.ChangeStatus)
	router.PATCH("/api/v1/admin/properties/id/:id/review", h.Review)
	router.PATCH("/api/v1/admin/properties/id/:id/publish", h.Publish)
	router.PATCH("/api/v1/admin/properties/id/:id/sold", h.MarkSold)
}

func (h *PropertyHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PropertyHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

// parseSearch reads directory criteria from the query string. Range checks
// are left to the service so they are reported as validation errors.
func parseSearch(q url.Values, defaultLimit int) (*model.PropertySearch, error) {
	var err error
	c := &model.PropertySearch{
		Query:        q.Get("search"),
		PropertyType: model.PropertyType(q.Get("property_type")),
		City:         q.Get("city"),
		State:        q.Get("state"),
		Address:      q.Get("address"),
		Amenities:    httputil.QueryList(q, "amenities"),
		SortBy:       model.SortKey(q.Get("sort_by")),
	}

	floats := []struct {
		key string
		dst **float64
	}{
		{"min_rent", &c.Rent.Min},
		{"max_rent", &c.Rent.Max},
		{"min_deposit", &c.Deposit.Min},
		{"max_deposit", &c.Deposit.Max},
		{"min_area", &c.Area.Min},
		{"max_area", &c.Area.Max},
	}
	for _, f := range floats {
		if *f.dst, err = httputil.QueryFloatPtr(q, f.key); err != nil {
			return nil, err
		}
	}
	if c.Bedrooms, err = httputil.QueryIntPtr(q, "bedrooms"); err != nil {
		return nil, err
	}
	if c.Bathrooms, err = httputil.QueryIntPtr(q, "bathrooms"); err != nil {
		return nil, err
	}
	if c.Page, err = httputil.QueryInt(q, "page", 1); err != nil {
		return nil, err
	}
	if c.Limit, err = httputil.QueryInt(q, "limit", defaultLimit); err != nil {
		return nil, err
	}
	return c, nil
}
