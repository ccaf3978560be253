package database

import "errors"

var (
	// ErrBatchNotFound is returned when no batch has the requested ID.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrDatabaseNotFound is returned by Open when the database file does
	// not exist and CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("database not found")
)
