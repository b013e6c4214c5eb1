package auth

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	oautherrors "github.com/go-oauth2/oauth2/v4/errors"
)

// HandleToken handles the token endpoint for the client credentials grant
// @Summary Token Endpoint
// @Description Obtain an access token using the client credentials grant
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: client_credentials"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Param scope formData string false "Requested scopes, defaults to the client's scopes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	if grantType := c.PostForm("grant_type"); grantType != string(oauth2.ClientCredentials) {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrUnsupportedGrantType, "only client_credentials is supported"))
		return
	}

	clientID := c.PostForm("client_id")
	clientSecret := c.PostForm("client_secret")
	if clientID == "" || clientSecret == "" {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest, "client_id and client_secret are required"))
		return
	}

	scope := c.PostForm("scope")
	if scope == "" {
		var client models.OAuthClient
		if err := o.db.WithContext(c.Request.Context()).Select("scopes").Where("id = ?", clientID).First(&client).Error; err == nil {
			scope = client.Scopes
		}
	}

	ti, err := o.server.Manager.GenerateAccessToken(c.Request.Context(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scope:        scope,
		Request:      c.Request,
	})
	if err != nil {
		switch {
		case errors.Is(err, oautherrors.ErrInvalidClient), errors.Is(err, oautherrors.ErrUnauthorizedClient):
			c.JSON(http.StatusUnauthorized, models.NewOAuth2Error(models.ErrInvalidClient, "client authentication failed"))
		case errors.Is(err, oautherrors.ErrInvalidScope):
			c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidScope, err.Error()))
		default:
			log.WithError(err).WithField("client_id", clientID).Error("Token generation failed")
			c.JSON(http.StatusInternalServerError, models.NewOAuth2Error(models.ErrServerError, "token generation failed"))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": ti.GetAccess(),
		"token_type":   "Bearer",
		"expires_in":   int64(ti.GetAccessExpiresIn().Seconds()),
		"scope":        ti.GetScope(),
	})
}
