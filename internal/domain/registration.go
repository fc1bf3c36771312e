package domain

import "time"

// Registration is one row in the registrations table: the verification state
// of a single account in the external user store.
// PK: user_id, GSI: email-index.
// Token and ExpiresAt are absent once the token has been consumed or when no
// verification is pending. IsVerified is monotonic — this service never
// resets it to false.
type Registration struct {
	UserID     string    `json:"id" dynamodbav:"user_id"`
	Email      string    `json:"email" dynamodbav:"email"`
	FullName   string    `json:"full_name" dynamodbav:"full_name"`
	Role       string    `json:"role" dynamodbav:"role"`
	Dep        string    `json:"dep" dynamodbav:"dep"`
	IsVerified bool      `json:"is_verified" dynamodbav:"is_verified"`
	Token      *string   `json:"-" dynamodbav:"token,omitempty"`
	ExpiresAt  *int64    `json:"-" dynamodbav:"expires_at,omitempty"` // Unix seconds
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

// TokenValid reports whether presented can consume the outstanding token:
// the record is unverified, the value matches exactly, and now is not past
// the expiry. A request arriving exactly at the expiry timestamp is still
// valid.
func (r *Registration) TokenValid(presented string, now time.Time) bool {
	if r.IsVerified || r.Token == nil || r.ExpiresAt == nil {
		return false
	}
	if presented == "" || presented != *r.Token {
		return false
	}
	return now.Unix() <= *r.ExpiresAt
}

// CreateRegistrationRequest is the body for POST /v1/registrations.
// ID is optional; a ULID is minted when it is absent. Image is an optional
// base64 PNG (raw or data-URI) attached to the verification email and
// archived to S3.
type CreateRegistrationRequest struct {
	ID       string `json:"id"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required"`
	Dep      string `json:"dep"`
	Image    string `json:"image"`
}

// SendEmailRequest is the body for POST /v1/send-email, the general mail
// relay. When UserID is set a fresh verification link is issued for that
// registration and appended to the HTML body.
type SendEmailRequest struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
	Image   string `json:"image"`
	UserID  string `json:"user_id"`
}
