package handler

import (
	"encoding/json"
	"net/http"

	"github.com/edutrack/verify-api/internal/application/verification"
	"github.com/edutrack/verify-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// successPage is rendered when a link verification succeeds. Same copy as the
// page the registration emails have always pointed at.
const successPage = `<html>
  <head><title>Verification Success</title></head>
  <body style="text-align:center; font-family:Arial; padding:50px;">
    <h2>&#9989; Email Verified</h2>
    <p>You may now log in to your account.</p>
  </body>
</html>`

// VerifyHandler handles both verification flows: the emailed link and the
// user-submitted OTP.
type VerifyHandler struct {
	svc verification.Service
}

func NewVerifyHandler(svc verification.Service) *VerifyHandler {
	return &VerifyHandler{svc: svc}
}

// Link handles GET /verify-email/{id}?token=... — a browser visit, so
// success renders HTML and failure is a plain-text reason.
func (h *VerifyHandler) Link(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	token := r.URL.Query().Get("token")

	if err := h.svc.VerifyLink(r.Context(), userID, token); err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			http.Error(w, "Server error during verification", status)
			return
		}
		http.Error(w, "Verification failed: "+err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(successPage))
}

// OTP handles POST /verify-otp with body {email, otp}.
func (h *VerifyHandler) OTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email" validate:"required,email"`
		OTP   string `json:"otp" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.VerifyOTP(r.Context(), body.Email, body.OTP); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "email verified"})
}
