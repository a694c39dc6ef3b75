package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariane/internal/entity"
)

func TestIssuerRoundTrip(t *testing.T) {
	issuer, err := NewIssuer("secret", time.Hour, nil)
	require.NoError(t, err)

	token, err := issuer.Generate("user-1")
	require.NoError(t, err)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestIssuerRejectsExpiredToken(t *testing.T) {
	issuer, err := NewIssuer("secret", time.Hour, nil)
	require.NoError(t, err)

	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.Generate("user-1")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestIssuerRejectsForeignSignature(t *testing.T) {
	other, err := NewIssuer("other", time.Hour, nil)
	require.NoError(t, err)
	token, err := other.Generate("user-1")
	require.NoError(t, err)

	issuer, err := NewIssuer("secret", time.Hour, nil)
	require.NoError(t, err)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)

	_, err = issuer.Verify("garbage")
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	_, err := NewIssuer("  ", time.Hour, nil)
	assert.Error(t, err)
}

func TestRequireToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer, err := NewIssuer("secret", time.Hour, nil)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", RequireToken(issuer), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := issuer.Generate("user-42")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", w.Body.String())
}
