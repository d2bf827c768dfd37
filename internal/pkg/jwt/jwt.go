package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/user"
)

// ErrNotAccessToken is returned for a valid token of another type.
var ErrNotAccessToken = errors.New("token is not an access token")

// Claims is the subset of access token claims the payroll API reads.
type Claims struct {
	UserID     string
	EmployeeID string
	Role       user.Role
	ExpiresAt  time.Time
}

type Service interface {
	// GenerateAccessToken signs a token for operators and service accounts.
	// Interactive logins are handled by the identity service sharing the key.
	GenerateAccessToken(userID string, employeeID *string, role user.Role) (token string, expiresAt int64, err error)
	ParseAccessToken(ctx context.Context, token string) (Claims, error)
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

func (j *JWTService) GenerateAccessToken(userID string, employeeID *string, role user.Role) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id": userID,
		"role":    string(role),
		"type":    "access",
		"exp":     expiresAt,
	}
	if employeeID != nil {
		claims["employee_id"] = *employeeID
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) ParseAccessToken(ctx context.Context, tokenString string) (Claims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return Claims{}, err
	}

	raw, err := token.AsMap(ctx)
	if err != nil {
		return Claims{}, err
	}
	if tokenType, _ := raw["type"].(string); tokenType != "access" {
		return Claims{}, ErrNotAccessToken
	}

	claims := Claims{ExpiresAt: token.Expiration()}
	claims.UserID, _ = raw["user_id"].(string)
	claims.EmployeeID, _ = raw["employee_id"].(string)
	if role, ok := raw["role"].(string); ok {
		claims.Role = user.Role(role)
	}
	return claims, nil
}
