package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/customer-platform/customer-service/pkg/httputil"
	"github.com/customer-platform/customer-service/pkg/validator"

	"github.com/customer-platform/customer-service/internal/auth"
	"github.com/customer-platform/customer-service/internal/domain"
	"github.com/customer-platform/customer-service/internal/service"
)

// AuthHandler handles login requests.
type AuthHandler struct {
	service *service.CustomerService
	tokens  *auth.TokenManager
	log     *slog.Logger
}

// NewAuthHandler creates an auth HTTP handler.
func NewAuthHandler(svc *service.CustomerService, tokens *auth.TokenManager, log *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, tokens: tokens, log: log}
}

// LoginRequest is the JSON request body for login. The name is the login
// principal.
type LoginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token and the public customer view.
type LoginResponse struct {
	Token    string              `json:"token"`
	Customer domain.CustomerView `json:"customer"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	customer, err := h.service.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	token, err := h.tokens.IssueWithScopes(customer.Name, "role_user")
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: LoginResponse{Token: token, Customer: customer.View()},
	})
}
