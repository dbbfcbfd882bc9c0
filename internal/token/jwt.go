// Package token issues and validates the bearer tokens that bind an HTTP
// caller to a wallet identity. Wallet-signature login happens upstream; by
// the time a token is minted the identity is already proven.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "giggate/pkg/domain"
	derrors "giggate/pkg/domain-errors"
)

// Claims carries the wallet identity in the subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

// Service handles JWT creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
}

func NewService(signingKey, issuer string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// GenerateToken mints an HS256 token for the given identity.
func (s *Service) GenerateToken(identity id.Identity, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// ValidateToken parses and verifies a token, returning the wallet identity it
// was issued for. Implements middleware.TokenValidator.
func (s *Service) ValidateToken(tokenString string) (id.Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", derrors.New(derrors.CodeUnauthorized, "token has expired")
		}
		return "", derrors.New(derrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return "", derrors.New(derrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return "", derrors.New(derrors.CodeUnauthorized, "invalid token claims")
	}

	identity, err := id.ParseIdentity(claims.Subject)
	if err != nil {
		return "", derrors.New(derrors.CodeUnauthorized, "token subject is not a wallet identity")
	}
	return identity, nil
}
