package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edutrack/verify-api/internal/domain"
	"github.com/edutrack/verify-api/internal/infrastructure/smtp"
	"github.com/edutrack/verify-api/internal/pkg/id"
	pkgtoken "github.com/edutrack/verify-api/internal/pkg/token"
)

// Service is the verification contract the HTTP layer depends on.
//
// Verify methods return nil on success or one of the domain sentinels:
// domain.ErrNotFound, domain.ErrAlreadyVerified, domain.ErrInvalidOrExpired.
// A validation failure is terminal for that request; the caller must
// re-issue a token to get a new attempt.
type Service interface {
	Register(ctx context.Context, req domain.CreateRegistrationRequest) (*domain.Registration, error)
	Resend(ctx context.Context, email string) error
	VerifyLink(ctx context.Context, userID, token string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	SendEmail(ctx context.Context, req domain.SendEmailRequest) error
}

type registrationStore interface {
	Put(ctx context.Context, reg *domain.Registration) error
	Get(ctx context.Context, userID string) (*domain.Registration, error)
	GetByEmail(ctx context.Context, email string) (*domain.Registration, error)
	SetToken(ctx context.Context, userID, token string, expiresAt int64) error
	MarkVerifiedAndClear(ctx context.Context, userID, expectedToken string) error
}

type attachmentArchive interface {
	StoreBase64(ctx context.Context, key, b64Data string) (string, error)
}

type eventPublisher interface {
	PublishVerified(ctx context.Context, userID, email string) error
}

type service struct {
	repo      registrationStore
	mailer    smtp.Mailer
	archive   attachmentArchive // optional
	publisher eventPublisher    // optional
	generator pkgtoken.Generator
	strategy  strategy
	baseURL   string
	now       func() time.Time
}

// ServiceDeps wires a verification Service. Archive and Publisher may be nil;
// both are best-effort collaborators.
type ServiceDeps struct {
	RegistrationRepo registrationStore
	Mailer           smtp.Mailer
	Archive          attachmentArchive
	Publisher        eventPublisher
	Generator        pkgtoken.Generator
	Mode             pkgtoken.Kind
	VerifyBaseURL    string
}

func NewService(deps ServiceDeps) Service {
	var strat strategy
	if deps.Mode == pkgtoken.KindLink {
		strat = linkStrategy{baseURL: deps.VerifyBaseURL}
	} else {
		strat = otpStrategy{}
	}
	return &service{
		repo:      deps.RegistrationRepo,
		mailer:    deps.Mailer,
		archive:   deps.Archive,
		publisher: deps.Publisher,
		generator: deps.Generator,
		strategy:  strat,
		baseURL:   deps.VerifyBaseURL,
		now:       time.Now,
	}
}

// Register creates the verification record for a new account and emails the
// first token. Registering an email that already has a pending (unverified)
// record re-issues: the fresh token overwrites the old one.
func (s *service) Register(ctx context.Context, req domain.CreateRegistrationRequest) (*domain.Registration, error) {
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.IsVerified {
			return nil, fmt.Errorf("email %s already verified: %w", req.Email, domain.ErrConflict)
		}
		if err := s.issue(ctx, existing, req.Image); err != nil {
			return nil, err
		}
		return existing, nil
	}

	tok, expiresAt, err := s.generator.Issue(s.strategy.kind())
	if err != nil {
		return nil, err
	}
	exp := expiresAt.Unix()
	now := s.now().UTC()
	reg := &domain.Registration{
		UserID:     req.ID,
		Email:      req.Email,
		FullName:   req.FullName,
		Role:       req.Role,
		Dep:        req.Dep,
		IsVerified: false,
		Token:      &tok,
		ExpiresAt:  &exp,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if reg.UserID == "" {
		reg.UserID = id.New()
	}
	if err := s.repo.Put(ctx, reg); err != nil {
		return nil, err
	}
	if err := s.deliver(ctx, reg, tok, req.Image); err != nil {
		return nil, err
	}
	return reg, nil
}

// Resend issues a fresh token for a pending registration, invalidating the
// previous one.
func (s *service) Resend(ctx context.Context, email string) error {
	reg, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if reg.IsVerified {
		return fmt.Errorf("email %s: %w", email, domain.ErrAlreadyVerified)
	}
	return s.issue(ctx, reg, "")
}

// issue generates a new token, overwrites the stored one, and delivers it.
func (s *service) issue(ctx context.Context, reg *domain.Registration, image string) error {
	tok, expiresAt, err := s.generator.Issue(s.strategy.kind())
	if err != nil {
		return err
	}
	if err := s.repo.SetToken(ctx, reg.UserID, tok, expiresAt.Unix()); err != nil {
		return err
	}
	exp := expiresAt.Unix()
	reg.Token = &tok
	reg.ExpiresAt = &exp
	return s.deliver(ctx, reg, tok, image)
}

func (s *service) deliver(ctx context.Context, reg *domain.Registration, tok, image string) error {
	subject, text, html := s.strategy.compose(reg, tok)

	var attachments []smtp.Attachment
	if image != "" {
		att, err := s.archiveImage(ctx, reg.UserID, image)
		if err != nil {
			return fmt.Errorf("attachment: %w: %v", domain.ErrBadRequest, err)
		}
		attachments = append(attachments, att)
	}

	if err := s.mailer.SendHTML(reg.Email, subject, text, html, attachments...); err != nil {
		return fmt.Errorf("send verification email to %s: %w: %v", reg.Email, domain.ErrDeliveryFailed, err)
	}
	return nil
}

// VerifyLink confirms a registration from an emailed URL. The record is
// looked up first so an unknown id and an already-verified one report
// distinct outcomes.
func (s *service) VerifyLink(ctx context.Context, userID, token string) error {
	reg, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	return s.consume(ctx, reg, token)
}

// VerifyOTP confirms a registration from a user-submitted code. Lookup is by
// email; comparison is an exact string match with no normalization.
func (s *service) VerifyOTP(ctx context.Context, email, otp string) error {
	reg, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.consume(ctx, reg, otp)
}

// consume validates the presented token against the fetched record and, when
// valid, atomically marks the registration verified and clears the token.
// When the conditional update loses a race, the record is re-read once to
// report what actually happened: the winner already verified it, or the
// token has been rotated out from under us.
func (s *service) consume(ctx context.Context, reg *domain.Registration, presented string) error {
	if reg.IsVerified {
		return fmt.Errorf("registration %s: %w", reg.UserID, domain.ErrAlreadyVerified)
	}
	if !reg.TokenValid(presented, s.now()) {
		return fmt.Errorf("registration %s: %w", reg.UserID, domain.ErrInvalidOrExpired)
	}

	err := s.repo.MarkVerifiedAndClear(ctx, reg.UserID, presented)
	if errors.Is(err, domain.ErrConflict) {
		current, getErr := s.repo.Get(ctx, reg.UserID)
		if getErr != nil {
			return getErr
		}
		if current.IsVerified {
			return fmt.Errorf("registration %s: %w", reg.UserID, domain.ErrAlreadyVerified)
		}
		return fmt.Errorf("registration %s: %w", reg.UserID, domain.ErrInvalidOrExpired)
	}
	if err != nil {
		return err
	}

	if s.publisher != nil {
		if pubErr := s.publisher.PublishVerified(ctx, reg.UserID, reg.Email); pubErr != nil {
			slog.Warn("failed to publish verified event", "user_id", reg.UserID, "err", pubErr)
		}
	}
	return nil
}

// SendEmail is the general mail relay. When UserID names a registration, a
// fresh link token is issued for it and the verification URL is appended to
// the HTML body.
func (s *service) SendEmail(ctx context.Context, req domain.SendEmailRequest) error {
	html := req.HTML
	if req.UserID != "" {
		reg, err := s.repo.Get(ctx, req.UserID)
		if err != nil {
			return err
		}
		tok, expiresAt, err := s.generator.Issue(pkgtoken.KindLink)
		if err != nil {
			return err
		}
		if err := s.repo.SetToken(ctx, reg.UserID, tok, expiresAt.Unix()); err != nil {
			return err
		}
		html += verifyLinkHTML(verifyURL(s.baseURL, reg.UserID, tok))
	}

	var attachments []smtp.Attachment
	if req.Image != "" {
		att, err := s.archiveImage(ctx, req.UserID, req.Image)
		if err != nil {
			return fmt.Errorf("attachment: %w: %v", domain.ErrBadRequest, err)
		}
		attachments = append(attachments, att)
	}

	if err := s.mailer.SendHTML(req.To, req.Subject, req.Text, html, attachments...); err != nil {
		return fmt.Errorf("send email to %s: %w: %v", req.To, domain.ErrDeliveryFailed, err)
	}
	return nil
}

// archiveImage decodes the base64 payload, best-effort copies it to the
// archive, and returns it as a mail attachment.
func (s *service) archiveImage(ctx context.Context, userID, image string) (smtp.Attachment, error) {
	raw, err := decodeBase64Image(image)
	if err != nil {
		return smtp.Attachment{}, err
	}
	if s.archive != nil && userID != "" {
		key := fmt.Sprintf("registrations/%s/visitor-qrcode.png", userID)
		if _, archErr := s.archive.StoreBase64(ctx, key, image); archErr != nil {
			slog.Warn("failed to archive attachment", "user_id", userID, "err", archErr)
		}
	}
	return smtp.Attachment{
		Filename:    "visitor-qrcode.png",
		ContentType: "image/png",
		Content:     raw,
	}, nil
}
