// Package geo resolves an IP address to an approximate "city, country"
// location by querying public geolocation services.
//
// Providers are tried strictly in order. The first successful answer wins;
// after each failure the Resolver waits a fixed pacing delay before asking
// the next provider, so a single address never fans out to several services
// at once. Results are best effort and are never cached.
package geo
