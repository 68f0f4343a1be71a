package errs

import "net/http"

// errorMap holds the CustomError template for every application error code.
// A zero Status means the error never surfaces as a non-200 HTTP response on
// its own (realtime errors travel inside the websocket error event).
var errorMap = map[int]CustomError{
	// 1xxx: General request handling errors
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Chat business logic errors
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrUsernameTaken:         {Code: ErrUsernameTaken, Message: "Username is already taken."},

	// 5xxx: Internal and upstream system errors
	ErrDatastore: {Code: ErrDatastore, Message: "Datastore request failed. Please try again.", Status: http.StatusInternalServerError},
	ErrUnknown:   {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
