package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/pizzeria-api/internal/middleware"
	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/franciscosanchezn/pizzeria-api/internal/payment"
	"github.com/franciscosanchezn/pizzeria-api/internal/pricing"
	"github.com/franciscosanchezn/pizzeria-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// respondError maps a service error to its HTTP status and APIError code.
// notFoundCode overrides the default NOT_FOUND code.
func respondError(c *gin.Context, err error, notFoundCode ...string) {
	status, code, message := http.StatusInternalServerError, models.ErrInternalServer, "Something went wrong, please try again"

	switch {
	case errors.Is(err, pricing.ErrUnknownPromo):
		status, code, message = http.StatusBadRequest, models.ErrPromoCodeInvalid, err.Error()
	case errors.Is(err, services.ErrEmptyCart):
		status, code, message = http.StatusBadRequest, models.ErrCartEmpty, "Cart is empty"
	case errors.Is(err, services.ErrInvalidStatus):
		status, code, message = http.StatusBadRequest, models.ErrOrderInvalidState, err.Error()
	case errors.Is(err, services.ErrValidation):
		status, code, message = http.StatusBadRequest, models.ErrValidationFailed, err.Error()
	case errors.Is(err, services.ErrInvalidToken):
		status, code, message = http.StatusBadRequest, models.ErrBadRequest, "Token is invalid or has expired"
	case errors.Is(err, services.ErrPaymentNotVerified):
		status, code, message = http.StatusBadRequest, models.ErrPaymentUnverified, "Payment signature could not be verified"
	case errors.Is(err, services.ErrDuplicatePayment):
		status, code, message = http.StatusConflict, models.ErrPaymentDuplicate, "Payment already processed"
	case errors.Is(err, services.ErrConflict):
		status, code, message = http.StatusConflict, models.ErrConflict, err.Error()
	case errors.Is(err, services.ErrNotFound):
		status, code, message = http.StatusNotFound, models.ErrNotFound, err.Error()
		if len(notFoundCode) > 0 {
			code = notFoundCode[0]
		}
	case errors.Is(err, payment.ErrGateway):
		status, code, message = http.StatusBadGateway, models.ErrPaymentFailed, "Payment provider request failed"
	}

	entry := log.WithError(err).WithFields(logrus.Fields{"path": c.FullPath(), "status": status})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}
	c.JSON(status, models.NewAPIError(code, message))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, message))
}

// pathID parses a positive numeric path parameter, writing a 400 on failure
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name+" format")
		return 0, false
	}
	return uint(id), true
}

// currentUserID reads the authenticated user, writing a 401 when absent
func currentUserID(c *gin.Context) (uint, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
		return 0, false
	}
	return id, true
}
