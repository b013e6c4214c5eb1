package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/franciscosanchezn/pizzeria-api/internal/auth"
	"github.com/franciscosanchezn/pizzeria-api/internal/middleware"
	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/franciscosanchezn/pizzeria-api/internal/notify"
	"github.com/franciscosanchezn/pizzeria-api/internal/services"
	"github.com/gin-gonic/gin"
)

// AuthSettings are the deployment dependent parts of the auth flow
type AuthSettings struct {
	// ClientURL prefixes the links sent by email
	ClientURL    string
	CookieSecure bool
}

type AuthController struct {
	userService services.UserService
	sessions    *auth.SessionIssuer
	mailer      notify.Mailer
	settings    AuthSettings
}

func NewAuthController(userService services.UserService, sessions *auth.SessionIssuer, mailer notify.Mailer, settings AuthSettings) *AuthController {
	if mailer == nil {
		mailer = notify.LogMailer{}
	}
	settings.ClientURL = strings.TrimRight(settings.ClientURL, "/")
	return &AuthController{
		userService: userService,
		sessions:    sessions,
		mailer:      mailer,
		settings:    settings,
	}
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Signup godoc
// @Summary Create an account
// @Description Register a customer and email a verification link. The user must verify before logging in.
// @Tags auth
// @Accept json
// @Produce json
// @Param user body signupRequest true "Account details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Router /api/auth/signup [post]
func (ac *AuthController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		badRequest(c, "Please provide name, email and password")
		return
	}
	if err := services.ValidatePassword(req.Password, req.PasswordConfirm); err != nil {
		respondError(c, err)
		return
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: req.Password,
		Role:     models.RoleCustomer,
	}
	if err := ac.userService.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	token, err := ac.userService.IssueEmailVerification(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	ac.sendMail(c, func() (notify.Message, error) {
		return notify.VerificationEmail(user.Email, user.Name, ac.settings.ClientURL+"/verifyEmail/"+token)
	})

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Account created successfully! Please check your email to verify your account.",
		"data":    gin.H{"user": user},
	})
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password. Sets the jwt cookie and returns the token.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body object{email=string,password=string} true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Router /api/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		badRequest(c, "Please provide email and password")
		return
	}

	user, err := ac.userService.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "Invalid email or password"))
		return
	}
	if !user.IsEmailVerified {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized,
			"Please verify your email before logging in. Check your inbox for the verification link."))
		return
	}

	ac.sendToken(c, user, http.StatusOK)
}

// Logout godoc
// @Summary Log out
// @Description Replaces the session cookie with a short lived placeholder
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/logout [get]
func (ac *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, "loggedout", 10, "/", "", ac.settings.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.OAuth2Error
// @Security CookieAuth
// @Router /api/auth/me [get]
func (ac *AuthController) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"user": user}})
}

// ForgotPassword godoc
// @Summary Request a password reset
// @Description Emails a reset link valid for 10 minutes
// @Tags auth
// @Accept json
// @Produce json
// @Param body body object{email=string} true "Account email"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /api/auth/forgotPassword [post]
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		badRequest(c, "Please provide your email address")
		return
	}

	ctx := c.Request.Context()
	user, err := ac.userService.GetUserByEmail(ctx, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := ac.userService.IssuePasswordReset(ctx, user)
	if err != nil {
		respondError(c, err)
		return
	}

	msg, err := notify.PasswordResetEmail(user.Email, user.Name, ac.settings.ClientURL+"/resetPassword/"+token)
	if err == nil {
		err = ac.mailer.Send(ctx, msg)
	}
	if err != nil {
		// The token is useless without the email
		log.WithError(err).WithField("user_id", user.ID).Error("Failed to send password reset email")
		if clearErr := ac.userService.ClearPasswordReset(ctx, user); clearErr != nil {
			log.WithError(clearErr).Error("Failed to clear password reset token")
		}
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer,
			"There was an error sending the email. Try again later."))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Password reset link sent to your email!"})
}

// ResetPassword godoc
// @Summary Reset password
// @Description Sets a new password using the emailed token. Existing sessions stop working.
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param body body object{password=string,passwordConfirm=string} true "New password"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Router /api/auth/resetPassword/{token} [patch]
func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req struct {
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" || req.PasswordConfirm == "" {
		badRequest(c, "Please provide password and password confirmation")
		return
	}

	if _, err := ac.userService.ResetPassword(c.Request.Context(), c.Param("token"), req.Password, req.PasswordConfirm); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success"})
}

// VerifyEmail godoc
// @Summary Verify email address
// @Description Marks the account verified and logs the user in
// @Tags auth
// @Produce json
// @Param token path string true "Verification token"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Router /api/auth/verifyEmail/{token} [get]
func (ac *AuthController) VerifyEmail(c *gin.Context) {
	user, err := ac.userService.VerifyEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	ac.sendToken(c, user, http.StatusCreated)
}

// sendToken sets the session cookie and returns the token with the user
func (ac *AuthController) sendToken(c *gin.Context, user *models.User, status int) {
	token, expires, err := ac.sessions.Issue(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, token, int(time.Until(expires).Seconds()), "/", "", ac.settings.CookieSecure, true)
	c.JSON(status, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": user},
	})
}

func (ac *AuthController) sendMail(c *gin.Context, build func() (notify.Message, error)) {
	msg, err := build()
	if err == nil {
		err = ac.mailer.Send(c.Request.Context(), msg)
	}
	if err != nil {
		log.WithError(err).Warn("Email sending failed, account created anyway")
	}
}
