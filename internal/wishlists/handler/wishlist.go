package handler

import (
	"net/http"

	"rentals/internal/wishlists/service"
	httputil "rentals/pkg/http"
	"rentals/pkg/logger"
	"rentals/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type WishlistHandler struct {
	service service.WishlistService
	log     *logger.Logger
}

func NewWishlistHandler(service service.WishlistService, log *logger.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: service,
		log:     log,
	}
}

func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var add model.WishlistAdd
	if err := httputil.DecodeJSON(r, &add); err != nil {
		h.writeError(w, "Add", err)
		return
	}

	view, err := h.service.Add(r.Context(), &add)
	if err != nil {
		h.writeError(w, "Add", err)
		return
	}

	h.writeSuccess(w, "Add", view)
}

func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	view, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	h.writeSuccess(w, "List", view)
}

func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view, err := h.service.Remove(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Remove", err)
		return
	}

	h.writeSuccess(w, "Remove", view)
}

func (h *WishlistHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/wishlist", h.Add)
	router.GET("/api/v1/wishlist", h.List)
	router.DELETE("/api/v1/wishlist/id/:id", h.Remove)
}

func (h *WishlistHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *WishlistHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}
