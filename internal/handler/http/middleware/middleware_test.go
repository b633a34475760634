package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(svc jwt.Service, perm user.Permission) http.Handler {
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(svc.JWTAuth()))
	r.Use(AuthRequired)
	r.With(RequirePermission(perm)).Get("/", func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(p.UserID))
	})
	return r
}

func call(t *testing.T, h http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequired(t *testing.T) {
	svc := jwt.NewJWTService("middleware-secret", "10m")
	h := protected(svc, user.PermissionAttendanceViewOwn)

	assert.Equal(t, http.StatusUnauthorized, call(t, h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, h, "garbage").Code)

	token, _, err := svc.GenerateAccessToken(user.Principal{UserID: "0190b7a4-5e7f-7c3a-9d2e-00000000000a", Role: user.RoleEmployee})
	require.NoError(t, err)
	rec := call(t, h, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0190b7a4-5e7f-7c3a-9d2e-00000000000a", rec.Body.String())
}

func TestRequirePermission(t *testing.T) {
	svc := jwt.NewJWTService("middleware-secret", "10m")
	h := protected(svc, user.PermissionCorrectionReview)

	employee, _, err := svc.GenerateAccessToken(user.Principal{UserID: "0190b7a4-5e7f-7c3a-9d2e-00000000000a", Role: user.RoleEmployee})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call(t, h, employee).Code)

	manager, _, err := svc.GenerateAccessToken(user.Principal{UserID: "0190b7a4-5e7f-7c3a-9d2e-00000000000b", Role: user.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, call(t, h, manager).Code)
}
