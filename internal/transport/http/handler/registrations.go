package handler

import (
	"encoding/json"
	"net/http"

	"github.com/edutrack/verify-api/internal/application/verification"
	"github.com/edutrack/verify-api/internal/domain"
	"github.com/edutrack/verify-api/internal/pkg/validate"
)

// RegistrationHandler handles registration issuance and the mail relay.
type RegistrationHandler struct {
	svc verification.Service
}

func NewRegistrationHandler(svc verification.Service) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// Create registers an account for verification and sends the first token.
func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	reg, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, RegistrationEnvelope{
		Registration: reg,
		Message:      "verification sent",
	})
}

// Resend re-issues a token for a pending registration.
func (h *RegistrationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.Resend(r.Context(), body.Email); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification sent"})
}

// SendEmail is the general relay: arbitrary subject/body, optional base64
// image attachment, and an appended verification link when user_id is given.
func (h *RegistrationHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req domain.SendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.To == "" || req.Subject == "" || (req.Text == "" && req.HTML == "") {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.SendEmail(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Email sent successfully"})
}
