package auth

import (
	"veriface/pkg/platform/middleware"
)

// JWTServiceAdapter adapts JWTService to the middleware.BankerValidator
// interface.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.BankerClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.BankerClaims{
		BankerID:   claims.BankerID,
		BranchCode: claims.BranchCode,
	}, nil
}
