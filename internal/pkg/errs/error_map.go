/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
// A zero Status means the failure is reported as a normal 200 response with status:false.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrInvalidField:         {Code: ErrInvalidField, Message: "Invalid value for field %s."},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Account and Conversation Business Logic Errors
	ErrDuplicateUsername:  {Code: ErrDuplicateUsername, Message: "Username already used"},
	ErrDuplicateEmail:     {Code: ErrDuplicateEmail, Message: "Email already used"},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Incorrect username or password"},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "User not found", Status: http.StatusNotFound},
	ErrMessageNotSaved:    {Code: ErrMessageNotSaved, Message: "Failed to add message to the database"},
	ErrAvatarUnavailable:  {Code: ErrAvatarUnavailable, Message: "Avatar image not available", Status: http.StatusNotFound},

	// 5xxx: Internal System Errors
	ErrUnknown:          {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStoreUnavailable: {Code: ErrStoreUnavailable, Message: "Storage is unavailable.", Status: http.StatusInternalServerError},
}
