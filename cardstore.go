package cardstore

import (
	"context"
	"errors"
)

var (
	// ErrRecordNotFound record not found in the table
	ErrRecordNotFound = errors.New("record not found in table")

	// ErrRecordExists record with the same package id already exists in table
	ErrRecordExists = errors.New("record already exists in table")

	// ErrRecordModified record was modified while it was being written
	ErrRecordModified = errors.New("record has been modified")

	// ErrInvalidArgument a required argument was missing or malformed
	ErrInvalidArgument = errors.New("invalid argument")
)

// CardStore represents the business card storage operations
type CardStore interface {
	// StoreWithContext create a record if its business name and received date pair is not already present
	StoreWithContext(ctx context.Context, rec *Record) (bool, error)

	// UpdateWithContext update the mutable fields of an existing record
	UpdateWithContext(ctx context.Context, rec *Record) (bool, error)

	// DeleteWithContext delete the record with the given package id
	DeleteWithContext(ctx context.Context, userID, packageID string) (bool, error)

	// SeedWithContext write a record built from positional fields
	SeedWithContext(ctx context.Context, fields ...string) error

	// GetWithContext a record given its package id
	GetWithContext(ctx context.Context, packageID string) (*Record, error)

	// SearchWithContext the records owned by a user
	SearchWithContext(ctx context.Context, userID string, options ...SearchOption) (*SearchResult, error)
}

var _ CardStore = (*Table)(nil)
