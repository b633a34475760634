package jwt

import (
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const TokenTypeAccess = "access"

// Service signs and verifies access tokens. Accounts and sign-in live in the
// external identity provider; tokens issued here are for operators and tests.
type Service interface {
	GenerateAccessToken(p user.Principal) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(p user.Principal) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = j.now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":     p.UserID,
		"employee_id": returnValueOrNil(p.EmployeeID),
		"role":        string(p.Role),
		"type":        TokenTypeAccess,
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func returnValueOrNil(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// PrincipalFromClaims reads the caller identity out of verified access token
// claims. employee_id may be absent for accounts that are not employees.
func PrincipalFromClaims(claims map[string]interface{}) (user.Principal, error) {
	if tokenType, _ := claims["type"].(string); tokenType != TokenTypeAccess {
		return user.Principal{}, user.ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	if !validator.IsValidUUID(userID) {
		return user.Principal{}, user.ErrUserIDRequired
	}

	role, _ := claims["role"].(string)
	if !user.IsValidRole(user.Role(role)) {
		return user.Principal{}, user.ErrInvalidRole
	}

	p := user.Principal{UserID: userID, Role: user.Role(role)}
	if employeeID, ok := claims["employee_id"].(string); ok {
		if !validator.IsValidUUID(employeeID) {
			return user.Principal{}, user.ErrEmployeeIDRequired
		}
		p.EmployeeID = employeeID
	}
	return p, nil
}
