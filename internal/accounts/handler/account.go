package handler

import (
	"net/http"

	"rentals/internal/accounts/service"
	httputil "rentals/pkg/http"
	"rentals/pkg/logger"
	"rentals/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AccountHandler struct {
	service      service.AccountService
	log          *logger.Logger
	defaultLimit int
}

func NewAccountHandler(service service.AccountService, log *logger.Logger, defaultLimit int) *AccountHandler {
	return &AccountHandler{
		service:      service,
		log:          log,
		defaultLimit: defaultLimit,
	}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var registration model.Registration
	if err := httputil.DecodeJSON(r, &registration); err != nil {
		h.writeError(w, "Register", err)
		return
	}

	user, err := h.service.Register(r.Context(), &registration)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteCreated(w, user); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var credentials model.Credentials
	if err := httputil.DecodeJSON(r, &credentials); err != nil {
		h.writeError(w, "Login", err)
		return
	}

	session, err := h.service.Login(r.Context(), &credentials)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	h.writeSuccess(w, "Login", session)
}

func (h *AccountHandler) SendOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request model.OTPRequest
	if err := httputil.DecodeJSON(r, &request); err != nil {
		h.writeError(w, "SendOTP", err)
		return
	}

	if err := h.service.SendOTP(r.Context(), &request); err != nil {
		h.writeError(w, "SendOTP", err)
		return
	}

	h.writeSuccess(w, "SendOTP", map[string]string{"message": "Verification code sent"})
}

func (h *AccountHandler) VerifyOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var verification model.OTPVerification
	if err := httputil.DecodeJSON(r, &verification); err != nil {
		h.writeError(w, "VerifyOTP", err)
		return
	}

	session, err := h.service.VerifyOTP(r.Context(), &verification)
	if err != nil {
		h.writeError(w, "VerifyOTP", err)
		return
	}

	h.writeSuccess(w, "VerifyOTP", session)
}

func (h *AccountHandler) LoginWithOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var verification model.OTPVerification
	if err := httputil.DecodeJSON(r, &verification); err != nil {
		h.writeError(w, "LoginWithOTP", err)
		return
	}

	session, err := h.service.LoginWithOTP(r.Context(), &verification)
	if err != nil {
		h.writeError(w, "LoginWithOTP", err)
		return
	}

	h.writeSuccess(w, "LoginWithOTP", session)
}

func (h *AccountHandler) ForgotPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request model.OTPRequest
	if err := httputil.DecodeJSON(r, &request); err != nil {
		h.writeError(w, "ForgotPassword", err)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), &request); err != nil {
		h.writeError(w, "ForgotPassword", err)
		return
	}

	h.writeSuccess(w, "ForgotPassword", map[string]string{"message": "Password reset code sent"})
}

func (h *AccountHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var verification model.OTPVerification
	if err := httputil.DecodeJSON(r, &verification); err != nil {
		h.writeError(w, "VerifyResetCode", err)
		return
	}

	if err := h.service.VerifyResetCode(r.Context(), &verification); err != nil {
		h.writeError(w, "VerifyResetCode", err)
		return
	}

	h.writeSuccess(w, "VerifyResetCode", map[string]string{"message": "Reset code is valid"})
}

func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var reset model.PasswordReset
	if err := httputil.DecodeJSON(r, &reset); err != nil {
		h.writeError(w, "ResetPassword", err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), &reset); err != nil {
		h.writeError(w, "ResetPassword", err)
		return
	}

	h.writeSuccess(w, "ResetPassword", map[string]string{"message": "Password has been reset"})
}

func (h *AccountHandler) ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r, h.defaultLimit)
	if err != nil {
		h.writeError(w, "ListUsers", err)
		return
	}

	list, err := h.service.ListUsers(r.Context(), page, limit)
	if err != nil {
		h.writeError(w, "ListUsers", err)
		return
	}

	h.writeSuccess(w, "ListUsers", list)
}

func (h *AccountHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/register", h.Register)
	router.POST("/api/v1/auth/login", h.Login)
	router.POST("/api/v1/auth/otp/send", h.SendOTP)
	router.POST("/api/v1/auth/otp/verify", h.VerifyOTP)
	router.POST("/api/v1/auth/login/otp", h.LoginWithOTP)
	router.POST("/api/v1/auth/password/forgot", h.ForgotPassword)
	router.POST("/api/v1/auth/password/forgot/verify", h.VerifyResetCode)
	router.POST("/api/v1/auth/password/reset", h.ResetPassword)

	router.GET("/api/v1/admin/users", h.ListUsers)
}

func (h *AccountHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AccountHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}
