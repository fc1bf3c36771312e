package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTableRegistrations string
	S3BucketName             string
	SNSTopicARN              string // empty disables verified-event publishing

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	// VerificationMode selects the issuance strategy: "link" or "otp".
	VerificationMode string
	VerifyBaseURL    string // external base URL embedded in verification links
	LinkTokenTTL     time.Duration
	OTPTTL           time.Duration

	ServiceTokenSecret string // HS256 secret for service-to-service bearer tokens

	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTableRegistrations: getEnv("DYNAMO_TABLE_REGISTRATIONS", "registrations"),
		S3BucketName:             getEnv("S3_BUCKET_NAME", "verify-api-attachments"),
		SNSTopicARN:              getEnv("SNS_TOPIC_ARN", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		VerificationMode: getEnv("VERIFICATION_MODE", "otp"),
		VerifyBaseURL:    getEnv("VERIFY_BASE_URL", ""),
		LinkTokenTTL:     getEnvDuration("LINK_TOKEN_TTL", 24*time.Hour),
		OTPTTL:           getEnvDuration("OTP_TTL", 10*time.Minute),

		ServiceTokenSecret: getEnv("SERVICE_TOKEN_SECRET", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// Validate fails closed on settings that have no safe default. Called once
// at startup; the server refuses to boot rather than run half-configured.
func (c *Config) Validate() error {
	var missing []string
	if c.SMTPHost == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if c.SMTPFrom == "" {
		missing = append(missing, "SMTP_FROM")
	}
	if c.VerifyBaseURL == "" {
		missing = append(missing, "VERIFY_BASE_URL")
	}
	if c.ServiceTokenSecret == "" {
		missing = append(missing, "SERVICE_TOKEN_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.VerificationMode != "link" && c.VerificationMode != "otp" {
		return fmt.Errorf("VERIFICATION_MODE must be \"link\" or \"otp\", got %q", c.VerificationMode)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
