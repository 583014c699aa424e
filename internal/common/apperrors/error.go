// Package apperrors provides the error system shared by the storefront client. Errors are
// chainable, carry an HTTP status code, and belong to a closed Kind taxonomy so callers can
// react uniformly to gateway failures regardless of which endpoint produced them.
package apperrors

// Error defines the interface for application errors. It extends the standard error
// interface with wrapping, message manipulation, status code and kind management.
// All mutating methods return a copy so package-level sentinels stay immutable.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // creates a new error using current as template
	Msg(msg string) Error                  // creates a new error with message and wraps original
	MsgErr(msg string, err ...error) Error // creates error with message and wraps extra errors
	Err(err ...error) Error                // attaches additional errors to current error
	SetExpandError(bool) Error             // controls whether ErrorAll expands wrapped errors
	SetStatusCode(int) Error               // sets HTTP status code for the error
	StatusCode() int                       // returns the current status code
	Kind() Kind                            // returns the taxonomy kind
	Prefix(string) Error                   // adds a prefix to the error message
	Suffix(string) Error                   // adds a suffix to the error message
	ErrorAll() string                      // returns full message including wrapped errors
	UnwrapAll() []error                    // returns all wrapped errors
}
