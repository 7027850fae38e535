package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	// ErrMissingCompany is returned when a verified token carries no company scope.
	ErrMissingCompany   = errors.New("company_id claim is missing or invalid")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInsufficientRole = errors.New("role is not allowed to perform this action")
)

// Roles carried in the role claim.
const (
	RoleOwner    = "owner"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

type Service interface {
	GenerateAccessToken(userID string, companyID string, role string) (token string, expiresAt int64, err error)
	GenerateStreamToken(userID string, companyID string) (token string, expiresIn int, err error)
	ValidateStreamToken(tokenString string) (companyID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateAccessToken issues a token for the payroll operator surface. The
// identity service of the platform normally issues these; this is used by
// tooling and tests.
func (j *JWTService) GenerateAccessToken(userID string, companyID string, role string) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":    userID,
		"company_id": companyID,
		"role":       role,
		"type":       "access",
		"exp":        expiresAt,
	})
	return tokenString, expiresAt, err
}

// GenerateStreamToken generates a short-lived token for the workflow event
// stream, which browsers open without custom headers.
func (j *JWTService) GenerateStreamToken(userID string, companyID string) (token string, expiresIn int, err error) {
	expiresIn = 300
	expiresAt := time.Now().Add(5 * time.Minute).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":    userID,
		"company_id": companyID,
		"type":       "stream",
		"exp":        expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateStreamToken validates a stream token and returns its company scope
func (j *JWTService) ValidateStreamToken(tokenString string) (companyID string, err error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != "stream" {
		return "", jwt.ErrInvalidJWT()
	}

	companyVal, ok := token.Get("company_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	companyID, ok = companyVal.(string)
	if !ok || companyID == "" {
		return "", jwt.ErrInvalidJWT()
	}

	return companyID, nil
}

// ClaimsFromContext returns the company and user of the verified request token.
func ClaimsFromContext(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", ErrMissingCompany
	}

	userID, _ = claims["user_id"].(string)

	return companyID, userID, nil
}

// RoleFromContext returns the role claim of the verified request token.
func RoleFromContext(ctx context.Context) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}
