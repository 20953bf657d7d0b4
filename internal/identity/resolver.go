package identity

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// ErrNoIdentity is returned for every credential that fails verification:
// missing, malformed, expired, or badly signed. Callers must not be able to
// distinguish the reason.
var ErrNoIdentity = errors.New("no identity")

// Claims is the resolved participant identity.
type Claims struct {
	StudentID int64
	FullName  string
	AvatarURL *string
}

// Resolver maps an opaque session credential to a participant.
type Resolver interface {
	Resolve(credential string) (Claims, error)
}

type sessionClaims struct {
	StudentID int64   `json:"id"`
	FullName  string  `json:"fullName"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver verifies the portal's HS256 session tokens.
type JWTResolver struct {
	secret []byte
}

// NewJWTResolver constructs a resolver with the shared session secret.
func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

// Resolve verifies the credential and returns the participant claims.
// Any failure collapses to ErrNoIdentity.
func (r *JWTResolver) Resolve(credential string) (Claims, error) {
	if credential == "" || len(r.secret) == 0 {
		return Claims{}, ErrNoIdentity
	}

	token, err := jwt.ParseWithClaims(credential, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil {
		return Claims{}, ErrNoIdentity
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.StudentID == 0 {
		return Claims{}, ErrNoIdentity
	}

	return Claims{
		StudentID: claims.StudentID,
		FullName:  claims.FullName,
		AvatarURL: claims.AvatarURL,
	}, nil
}

var _ Resolver = (*JWTResolver)(nil)
