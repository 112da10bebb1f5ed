package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinichq/booking-api/internal/model"
	"github.com/clinichq/booking-api/pkg/auth"
)

func newTestRouter(t *testing.T) (*gin.Engine, auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := auth.NewJWTService("test-secret", time.Hour, "booking-api-test")
	m := NewAuthMiddleware(jwtSvc)

	r := gin.New()
	protected := r.Group("/", m.Authenticate(), m.RequireActor(model.ActorPatient))
	protected.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": SubjectID(c).String()})
	})
	return r, jwtSvc
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateMissingHeader(t *testing.T) {
	r, _ := newTestRouter(t)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	r, _ := newTestRouter(t)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Token abc").Code)
}

func TestAuthenticateInvalidToken(t *testing.T) {
	r, _ := newTestRouter(t)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Bearer garbage").Code)
}

func TestAuthenticateValidToken(t *testing.T) {
	r, jwtSvc := newTestRouter(t)

	id := uuid.New()
	token, err := jwtSvc.GenerateToken(id, model.ActorPatient, "alice@example.com")
	require.NoError(t, err)

	w := doRequest(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
}

func TestRequireActorRejectsWrongRole(t *testing.T) {
	r, jwtSvc := newTestRouter(t)

	token, err := jwtSvc.GenerateToken(uuid.New(), model.ActorDoctor, "richard@clinic.example")
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, doRequest(r, "Bearer "+token).Code)
}
