// Package auth validates banker access tokens. Token issuance belongs to the
// bank's identity provider; this service only needs the shared signing key.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "veriface/pkg/domain"
	dErrors "veriface/pkg/domain-errors"
)

// Claims are the JWT claims carried by banker access tokens.
type Claims struct {
	BankerID   string `json:"banker_id"`
	BranchCode string `json:"branch_code"`
	jwt.RegisteredClaims
}

// BankerClaims is the validated, typed form handed to middleware.
type BankerClaims struct {
	BankerID   id.BankerID
	BranchCode string
}

// JWTService handles token validation and, for development and tests,
// creation.
type JWTService struct {
	signingKey []byte
	issuer     string
}

func NewJWTService(signingKey, issuer string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// GenerateAccessToken mints an HS256 token for the given banker. Used by
// development tooling and handler tests.
func (s *JWTService) GenerateAccessToken(bankerID id.BankerID, branchCode string, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		BankerID:   bankerID.String(),
		BranchCode: branchCode,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken parses and verifies a token string.
// Errors: CodeUnauthorized for expired, malformed, or mis-signed tokens.
func (s *JWTService) ValidateToken(tokenString string) (*BankerClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	bankerID, err := id.ParseBankerID(claims.BankerID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid banker identity in token")
	}
	return &BankerClaims{BankerID: bankerID, BranchCode: claims.BranchCode}, nil
}
