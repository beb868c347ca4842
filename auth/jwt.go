package auth

import (
	"errors"
	"fmt"
	"time"

	"staygrow/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims holds the session token claims. Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Verifier turns HS256 session tokens into viewers. Token issuance belongs to
// the auth service; Issue exists for tests and local tooling.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("no secret configured")
	}
	return &Verifier{secret: []byte(secret), now: time.Now}, nil
}

// Verify parses and validates token and returns the identified viewer.
func (v *Verifier) Verify(token string) (models.Identified, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return models.Identified{}, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return models.Identified{}, errors.New("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.Identified{}, fmt.Errorf("invalid subject: %w", err)
	}

	return models.Identified{UserID: userID, Role: parseRole(claims.Role)}, nil
}

// Resolve never fails: a missing, malformed or expired token is Anonymous.
func (v *Verifier) Resolve(token string) models.Viewer {
	if token == "" {
		return models.Anonymous{}
	}
	viewer, err := v.Verify(token)
	if err != nil {
		return models.Anonymous{}
	}
	return viewer
}

// Issue signs a token for userID with the given role, valid for ttl.
func (v *Verifier) Issue(userID uuid.UUID, role models.Role, ttl time.Duration) (string, error) {
	now := v.now().UTC()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: string(role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// parseRole maps unknown roles to USER so a token can never escalate by typo.
func parseRole(role string) models.Role {
	switch models.Role(role) {
	case models.RoleAdmin:
		return models.RoleAdmin
	case models.RoleMentor:
		return models.RoleMentor
	default:
		return models.RoleUser
	}
}
