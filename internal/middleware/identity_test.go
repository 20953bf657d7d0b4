package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/identity"
	"messaging-service/internal/mocks"
)

func TestRequireIdentityRejectsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := new(mocks.ResolverMock)
	resolver.On("Resolve", "").Return(identity.Claims{}, identity.ErrNoIdentity).Once()

	r := gin.New()
	r.GET("/protected", RequireIdentity(resolver), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"not authenticated"}`, rec.Body.String())
}

func TestRequireIdentitySetsStudent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := new(mocks.ResolverMock)
	resolver.On("Resolve", "good-token").Return(identity.Claims{StudentID: 7, FullName: "Dana Ivanov"}, nil).Once()

	var gotID int64
	var gotOK bool
	r := gin.New()
	r.GET("/protected", RequireIdentity(resolver), func(c *gin.Context) {
		gotID, gotOK = StudentID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, gotOK)
	assert.Equal(t, int64(7), gotID)
	resolver.AssertExpectations(t)
}

func TestOptionalIdentityLetsAnonymousThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := new(mocks.ResolverMock)
	resolver.On("Resolve", "").Return(identity.Claims{}, identity.ErrNoIdentity).Once()

	var gotOK bool
	r := gin.New()
	r.GET("/open", OptionalIdentity(resolver), func(c *gin.Context) {
		_, gotOK = StudentID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gotOK)
}

func TestOptionalIdentityResolvesWhenPresent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := new(mocks.ResolverMock)
	resolver.On("Resolve", "good-token").Return(identity.Claims{StudentID: 7}, nil).Once()

	var gotID int64
	r := gin.New()
	r.GET("/open", OptionalIdentity(resolver), func(c *gin.Context) {
		gotID, _ = StudentID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/open?token=good-token", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), gotID)
}
