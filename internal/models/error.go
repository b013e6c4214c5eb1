package models

// APIError represents a standardized error response for the API
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error code constants
const (
	// General errors
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrConflict         = "CONFLICT"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"

	// Order and cart errors
	ErrOrderNotFound     = "ORDER_NOT_FOUND"
	ErrOrderInvalidState = "ORDER_INVALID_STATUS"
	ErrCartEmpty         = "CART_EMPTY"
	ErrCartItemNotFound  = "CART_ITEM_NOT_FOUND"

	// Payment errors
	ErrPaymentFailed      = "PAYMENT_FAILED"
	ErrPaymentUnverified  = "PAYMENT_NOT_VERIFIED"
	ErrPaymentDuplicate   = "PAYMENT_ALREADY_PROCESSED"
	ErrPromoCodeInvalid   = "PROMO_CODE_INVALID"
	ErrInventoryNotFound  = "INVENTORY_ITEM_NOT_FOUND"
	ErrInventoryDuplicate = "INVENTORY_ITEM_EXISTS"

	// OAuth/Auth errors (maintain RFC 6749 compatibility)
	ErrInvalidRequest       = "invalid_request"
	ErrInvalidClient        = "invalid_client"
	ErrUnsupportedGrantType = "unsupported_grant_type"
	ErrInvalidScope         = "invalid_scope"
	ErrServerError          = "server_error"
)

// NewAPIError creates a new API error with the given code and message
func NewAPIError(code, message string, details ...map[string]interface{}) APIError {
	err := APIError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// OAuth2Error represents an OAuth2 error response (RFC 6749)
type OAuth2Error struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
}

// NewOAuth2Error creates a new OAuth2 error response
func NewOAuth2Error(error, description string) OAuth2Error {
	return OAuth2Error{
		Error:            error,
		ErrorDescription: description,
	}
}
