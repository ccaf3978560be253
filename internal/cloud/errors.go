package cloud

import "errors"

// Range document errors.
var (
	// ErrMalformedDocument is returned when a JSON range document cannot be parsed.
	ErrMalformedDocument = errors.New("malformed range document")

	// ErrUnknownProvider is returned when a document is requested for a provider
	// that has no registered file name.
	ErrUnknownProvider = errors.New("unknown cloud provider")
)
