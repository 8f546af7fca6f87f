package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/customer-platform/customer-service/pkg/httputil"
	"github.com/customer-platform/customer-service/pkg/validator"

	"github.com/customer-platform/customer-service/internal/auth"
	"github.com/customer-platform/customer-service/internal/domain"
	"github.com/customer-platform/customer-service/internal/service"
)

// maxImageBytes caps profile image uploads.
const maxImageBytes = 5 << 20

// CustomerHandler handles HTTP requests for customer endpoints.
type CustomerHandler struct {
	service *service.CustomerService
	images  *service.ProfileImageService
	tokens  *auth.TokenManager
	log     *slog.Logger
}

// NewCustomerHandler creates a customer HTTP handler.
func NewCustomerHandler(
	svc *service.CustomerService,
	images *service.ProfileImageService,
	tokens *auth.TokenManager,
	log *slog.Logger,
) *CustomerHandler {
	return &CustomerHandler{service: svc, images: images, tokens: tokens, log: log}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for customer registration.
type RegisterRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=100"`
	Password  string `json:"password" validate:"required,min=6,max=100"`
	BirthDate string `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Gender    string `json:"gender" validate:"max=50"`
}

// UpdateRequest is the JSON request body for a partial customer update. A
// field absent from the JSON stays nil and means "no change requested".
type UpdateRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	BirthDate *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Gender    *string `json:"gender" validate:"omitempty,max=50"`
}

// --- Handlers ---

// List handles GET /api/v1/customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: views})
}

// Get handles GET /api/v1/customers/{id}
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	customer, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: customer.View()})
}

// Register handles POST /api/v1/customers. The bearer token for the new
// customer is returned in the Authorization response header.
func (h *CustomerHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req RegisterRequest
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

	birthDate, err := domain.ParseDate(req.BirthDate)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	customer, err := h.service.Register(r.Context(), service.RegisterInput{
		Name:      req.Name,
		Password:  req.Password,
		BirthDate: birthDate,
		Gender:    req.Gender,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	token, err := h.tokens.IssueWithScopes(customer.Name, "role_user")
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: customer.View()})
}

// Update handles PUT /api/v1/customers/{id}
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateRequest
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

	input := service.UpdateInput{Name: req.Name, Gender: req.Gender}
	if req.BirthDate != nil {
		birthDate, err := domain.ParseDate(*req.BirthDate)
		if err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
		input.BirthDate = &birthDate
	}

	customer, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: customer.View()})
}

// Delete handles DELETE /api/v1/customers/{id}
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles POST /api/v1/customers/{id}/profile-image. The image
// arrives as the multipart form field "file".
func (h *CustomerHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)

	file, _, err := r.FormFile("file")
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: `multipart field "file" is required`},
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "read upload: " + err.Error()},
		})
		return
	}

	imageID, err := h.images.Upload(r.Context(), id, data)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"profileImageId": imageID}})
}

// DownloadImage handles GET /api/v1/customers/{id}/profile-image, returning
// the raw image bytes.
func (h *CustomerHandler) DownloadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	data, err := h.images.Download(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
