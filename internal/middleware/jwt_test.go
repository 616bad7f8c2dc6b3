package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-enroll-api/internal/models"
	"github.com/noah-isme/uni-enroll-api/internal/service"
)

const testSecret = "test-secret"

type noopUserRepo struct{}

func (noopUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (noopUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (noopUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return nil
}

func (noopUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return nil, sql.ErrNoRows
}

func (noopUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	return nil
}

func mintToken(t *testing.T, role models.UserRole) string {
	t.Helper()
	now := time.Now().UTC()
	claims := models.JWTClaims{
		UserID: "user-1",
		Role:   role,
		Email:  "user@uni.test",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func buildProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	authSvc := service.NewAuthService(noopUserRepo{}, nil, nil, service.AuthConfig{
		AccessTokenSecret: testSecret,
		AccessTokenExpiry: time.Hour,
	})

	router := gin.New()
	router.GET("/coordinator", JWT(authSvc), RequireRoles(models.RoleCoordinator), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	router := buildProtectedRouter()

	req, _ := http.NewRequest(http.MethodGet, "/coordinator", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	router := buildProtectedRouter()

	req, _ := http.NewRequest(http.MethodGet, "/coordinator", nil)
	req.Header.Set("Authorization", "Token abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestJWTRejectsInvalidToken(t *testing.T) {
	router := buildProtectedRouter()

	req, _ := http.NewRequest(http.MethodGet, "/coordinator", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRequireRolesForbidsStudent(t *testing.T) {
	router := buildProtectedRouter()

	req, _ := http.NewRequest(http.MethodGet, "/coordinator", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, models.RoleStudent))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestRequireRolesAllowsCoordinator(t *testing.T) {
	router := buildProtectedRouter()

	req, _ := http.NewRequest(http.MethodGet, "/coordinator", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, models.RoleCoordinator))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
}
