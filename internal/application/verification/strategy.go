package verification

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/edutrack/verify-api/internal/domain"
	pkgtoken "github.com/edutrack/verify-api/internal/pkg/token"
)

// strategy is one of the two issuance protocols: link-based or OTP-based.
// Both produce the same record shape; they differ only in the token kind and
// the message the user receives.
type strategy interface {
	kind() pkgtoken.Kind
	compose(reg *domain.Registration, tok string) (subject, text, html string)
}

type linkStrategy struct {
	baseURL string
}

func (linkStrategy) kind() pkgtoken.Kind { return pkgtoken.KindLink }

func (s linkStrategy) compose(reg *domain.Registration, tok string) (string, string, string) {
	url := verifyURL(s.baseURL, reg.UserID, tok)
	text := fmt.Sprintf("Hello %s,\n\nVerify your account by visiting:\n%s\n", reg.FullName, url)
	html := fmt.Sprintf("<p>Hello %s,</p>", reg.FullName) + verifyLinkHTML(url)
	return "Verify your email", text, html
}

type otpStrategy struct{}

func (otpStrategy) kind() pkgtoken.Kind { return pkgtoken.KindOTP }

func (otpStrategy) compose(reg *domain.Registration, tok string) (string, string, string) {
	text := fmt.Sprintf("Hello %s,\n\nYour verification code is %s. It expires in 10 minutes.\n", reg.FullName, tok)
	html := fmt.Sprintf(`<p>Hello %s,</p><p>Your verification code is <b>%s</b>. It expires in 10 minutes.</p>`, reg.FullName, tok)
	return "Your verification code", text, html
}

func verifyURL(baseURL, userID, tok string) string {
	return fmt.Sprintf("%s/verify-email/%s?token=%s", strings.TrimRight(baseURL, "/"), userID, tok)
}

func verifyLinkHTML(url string) string {
	return fmt.Sprintf(`
      <p>Click the link below to verify your account:</p>
      <a href="%s">%s</a>
    `, url, url)
}

// decodeBase64Image strips an optional "data:image/...;base64," prefix and
// decodes the payload.
func decodeBase64Image(data string) ([]byte, error) {
	if i := strings.Index(data, ";base64,"); i >= 0 {
		data = data[i+len(";base64,"):]
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode base64 image: %w", err)
	}
	return decoded, nil
}
