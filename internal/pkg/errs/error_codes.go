/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrInvalidField indicates that a single named field failed validation.
	ErrInvalidField = 1005

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Account and Conversation Business Logic Errors
const (
	// ErrDuplicateUsername indicates that the username is already registered.
	ErrDuplicateUsername = 2001

	// ErrDuplicateEmail indicates that the email is already registered.
	ErrDuplicateEmail = 2002

	// ErrInvalidCredentials is returned for both an unknown username and a wrong password.
	ErrInvalidCredentials = 2003

	// ErrUserNotFound indicates that no user exists with the given id.
	ErrUserNotFound = 2004

	// ErrMessageNotSaved indicates that a chat message could not be persisted.
	ErrMessageNotSaved = 2101

	// ErrAvatarUnavailable indicates that no mirrored avatar object can be served.
	ErrAvatarUnavailable = 2201
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStoreUnavailable indicates a connection or write failure in the backing store.
	ErrStoreUnavailable = 5001
)
