package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/franciscosanchezn/pizzeria-api/internal/auth"
	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/gin-gonic/gin"
)

// Context keys set by Authenticate
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextUser     = "user"
	ContextClientID = "clientID"
	ContextScopes   = "scopes"
)

// UserLookup loads the account behind a token
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// Authenticate validates the session token from the jwt cookie or an
// Authorization: Bearer header (API clients). The user is reloaded on every
// request, so deleted accounts and tokens issued before the last password
// change are rejected and the role always reflects the database.
func Authenticate(jwtSecret string, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractToken(c)
		if err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "authorization_required", err.Error())
			return
		}

		claims, err := auth.ParseToken(tokenString, jwtSecret)
		if err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", err.Error())
			return
		}
		if iat := claims.IssuedAtTime(); !iat.IsZero() && iat.After(time.Now().Add(time.Minute)) {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", "token issued in the future")
			return
		}

		userID, err := claims.UserIDValue()
		if err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", err.Error())
			return
		}
		if err := validateRole(claims.Role); err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", err.Error())
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), userID)
		if err != nil || user == nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", "the user belonging to this token no longer exists")
			return
		}
		if user.ChangedPasswordAfter(claims.IssuedAtTime()) {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", "password changed recently, please log in again")
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.Role)
		c.Set(ContextUser, user)
		if len(claims.Audience) > 0 && claims.Audience[0] != "" {
			c.Set(ContextClientID, claims.Audience[0])
		}
		if claims.Scope != "" {
			c.Set(ContextScopes, claims.Scope)
		}

		c.Next()
	}
}

func extractToken(c *gin.Context) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", errors.New("authorization header must use Bearer scheme")
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return "", errors.New("bearer token is empty")
		}
		return token, nil
	}
	if cookie, err := c.Cookie(auth.SessionCookie); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", errors.New("you are not logged in, please log in to get access")
}

func validateRole(role string) error {
	switch role {
	case models.RoleCustomer, models.RoleAdmin:
		return nil
	case "":
		return errors.New("token missing required 'role' claim")
	default:
		return errors.New("invalid role '" + role + "'")
	}
}

// respondWithOAuth2Error responds with RFC 6750 compliant error format
func respondWithOAuth2Error(c *gin.Context, status int, errorCode, description string) {
	c.AbortWithStatusJSON(status, models.NewOAuth2Error(errorCode, description))
}

// CurrentUser returns the user loaded by Authenticate
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// CurrentUserID returns the authenticated user's id
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
