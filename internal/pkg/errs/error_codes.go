package errs

// 1xxx: General request handling errors
const (
	// ErrInvalidParams indicates that request or event parameter validation failed.
	ErrInvalidParams = 1001

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1002
)

// 2xxx: Chat business logic errors
const (
	// ErrMessageContentTooLong indicates that a chat message exceeded the maximum length.
	ErrMessageContentTooLong = 2001

	// ErrUsernameTaken indicates that a display name could not be claimed even
	// after the fallback-name path was exhausted.
	ErrUsernameTaken = 2002
)

// 5xxx: Internal and upstream system errors
const (
	// ErrDatastore indicates that a call to the external datastore failed.
	ErrDatastore = 5001

	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000
)
