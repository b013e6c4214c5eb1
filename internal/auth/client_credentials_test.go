package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenRouter(svc *OAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/oauth/token", svc.HandleToken)
	return router
}

func postToken(router *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestClientCredentialsFlow(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret)
	admin := createAdmin(t, db)
	createClient(t, db, "test_client_id", "test_secret", admin.ID)

	w := postToken(tokenRouter(oauthService), url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {"test_client_id"},
		"client_secret": {"test_secret"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Bearer", response["token_type"])
	assert.Equal(t, "orders:read,orders:write", response["scope"])
	assert.Equal(t, float64(7200), response["expires_in"])

	claims, err := ParseToken(response["access_token"].(string), testSecret)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestClientCredentialsInvalidSecret(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret)
	admin := createAdmin(t, db)
	createClient(t, db, "test_client_id", "correct_secret", admin.ID)

	w := postToken(tokenRouter(oauthService), url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {"test_client_id"},
		"client_secret": {"wrong_secret"},
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var response models.OAuth2Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, models.ErrInvalidClient, response.Error)
}

func TestClientCredentialsUnknownClient(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, testSecret)

	w := postToken(tokenRouter(oauthService), url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {"nobody"},
		"client_secret": {"secret"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenEndpointRejectsOtherGrants(t *testing.T) {
	db := setupTestDB(t)
	router := tokenRouter(NewOAuthService(db, testSecret))

	w := postToken(router, url.Values{"grant_type": {"authorization_code"}, "code": {"abc"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrUnsupportedGrantType)

	w = postToken(router, url.Values{"grant_type": {"client_credentials"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrInvalidRequest)
}
