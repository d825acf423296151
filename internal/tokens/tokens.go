package tokens

import (
	"context"
	"fmt"
	"time"

	"github.com/culturequest/culturequest/backend/go-services/internal/config"
	"github.com/culturequest/culturequest/backend/go-services/pkg/middleware"
	"github.com/golang-jwt/jwt/v5"
)

// Subject identifies the principal a token is issued for.
type Subject struct {
	Sub   string
	Name  string
	Email string
	Roles []string
}

// GenerateAccessToken creates a signed JWT access token for the subject
func GenerateAccessToken(cfg *config.Config, s *Subject, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   s.Sub,
		"name":  s.Name,
		"email": s.Email,
		"roles": s.Roles,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// hmacToken wraps parsed claims so the middleware can read them.
type hmacToken struct {
	claims jwt.MapClaims
}

func (t *hmacToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.claims
		return nil
	}
	return fmt.Errorf("unsupported claims type %T", v)
}

// HMACVerifier validates HS256 tokens issued with GenerateAccessToken.
// Used when no OIDC issuer is configured but JWT_SECRET is set.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return &hmacToken{claims: claims}, nil
}
