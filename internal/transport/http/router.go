package http

import (
	"net/http"

	"github.com/edutrack/verify-api/internal/application/verification"
	"github.com/edutrack/verify-api/internal/config"
	jwtinfra "github.com/edutrack/verify-api/internal/infrastructure/jwt"
	"github.com/edutrack/verify-api/internal/infrastructure/smtp"
	"github.com/edutrack/verify-api/internal/infrastructure/sns"
	pkgtoken "github.com/edutrack/verify-api/internal/pkg/token"
	"github.com/edutrack/verify-api/internal/transport/http/handler"
	appmiddleware "github.com/edutrack/verify-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	RegistrationRepo RegistrationRepository
	Archive          AttachmentArchive
	Mailer           smtp.Mailer
	Publisher        sns.EventPublisher
	JWTProvider      *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to public verification and
	// issuance endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	mode, err := pkgtoken.ParseKind(cfg.VerificationMode)
	if err != nil {
		// Validate() rejects unknown modes before the router is built.
		mode = pkgtoken.KindOTP
	}
	verifySvc := verification.NewService(verification.ServiceDeps{
		RegistrationRepo: deps.RegistrationRepo,
		Mailer:           deps.Mailer,
		Archive:          deps.Archive,
		Publisher:        deps.Publisher,
		Generator:        pkgtoken.Generator{LinkTTL: cfg.LinkTokenTTL, OTPTTL: cfg.OTPTTL},
		Mode:             mode,
		VerifyBaseURL:    cfg.VerifyBaseURL,
	})

	healthH := handler.NewHealthHandler()
	verifyH := handler.NewVerifyHandler(verifySvc)
	regH := handler.NewRegistrationHandler(verifySvc)

	// ── Public routes (reached from emailed links and end-user clients) ──
	r.Get("/verify-email/{id}", verifyH.Link)
	r.With(sensitiveRL.Limit).Post("/verify-otp", verifyH.OTP)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		// ── Service-authenticated routes ─────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.With(sensitiveRL.Limit).Post("/registrations", regH.Create)
			r.With(sensitiveRL.Limit).Post("/registrations/resend", regH.Resend)
			r.Post("/send-email", regH.SendEmail)
		})
	})

	return r
}
