// Package cloud attributes IP addresses to cloud providers.
//
// A Table holds, per provider, the set of network ranges the provider
// publishes. Tables are built once at startup from provider documents and
// are read-only afterwards, so a single Table is shared by every concurrent
// pipeline without locking.
//
// # Priority
//
// Providers are queried in a fixed order (see Priority). An address that
// appears in the published ranges of two providers is attributed to the one
// that comes first.
//
// # Documents
//
// LoadDocuments reads provider range documents from a directory. AWS,
// Google Cloud, Azure and Tianyi Cloud documents are parsed in their
// published JSON formats; any other provider accepts a JSON array of CIDR
// strings or a plain-text file with one CIDR per line. A provider without a
// document contributes zero ranges.
package cloud
