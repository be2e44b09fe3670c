package cardstore

import (
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// NewPackageID returns a random package id, a base58 encoded version 4 UUID
func NewPackageID() string {
	id := uuid.New()
	return base58.Encode(id[:])
}
