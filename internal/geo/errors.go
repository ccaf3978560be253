package geo

import "errors"

// Geolocation errors.
var (
	// ErrExhausted is returned when every provider failed for an address.
	ErrExhausted = errors.New("all geolocation providers failed")

	// ErrHTTPStatus is returned when a provider answers with a non-2xx status.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrMalformedResponse is returned when a provider body is not valid JSON.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrProviderRejected is returned when a provider reports an error inside
	// an otherwise successful response (e.g. ip-api "status": "fail").
	ErrProviderRejected = errors.New("provider rejected the lookup")

	// ErrInvalidEndpoint is returned by NewHTTPProvider for an unusable endpoint.
	ErrInvalidEndpoint = errors.New("invalid provider endpoint")
)
