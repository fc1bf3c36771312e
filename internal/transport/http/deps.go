package http

import (
	"context"

	"github.com/edutrack/verify-api/internal/domain"
)

// RegistrationRepository is the minimal interface the router requires from
// the registration store.
type RegistrationRepository interface {
	Put(ctx context.Context, reg *domain.Registration) error
	Get(ctx context.Context, userID string) (*domain.Registration, error)
	GetByEmail(ctx context.Context, email string) (*domain.Registration, error)
	SetToken(ctx context.Context, userID, token string, expiresAt int64) error
	MarkVerifiedAndClear(ctx context.Context, userID, expectedToken string) error
}

// AttachmentArchive is the minimal interface the router requires from the
// attachment object store.
type AttachmentArchive interface {
	StoreBase64(ctx context.Context, key, b64Data string) (string, error)
}
