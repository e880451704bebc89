// Package registry - The vehicle registry contract and plate normalisation.
package registry

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
)

var (
	// ErrNotFound is returned by Lookup when no record holds the plate.
	ErrNotFound = errors.New("registry: vehicle not found")
	// ErrDuplicateKey is returned by Register when the plate is already registered.
	ErrDuplicateKey = errors.New("registry: plate already registered")
)

// VehicleRecord is a registered vehicle. Records are never updated or deleted.
type VehicleRecord struct {
	ID        int64     `json:"id" yaml:"id"`
	Plate     string    `json:"plate" yaml:"plate"`
	OwnerName string    `json:"owner_name" yaml:"owner_name"`
	Phone     string    `json:"phone" yaml:"phone"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Registry is a durable store of vehicle records keyed by plate.
//
// Implementations must enforce plate uniqueness atomically: of two concurrent
// Register calls for the same plate exactly one succeeds.
type Registry interface {
	// Lookup returns the record for a normalised plate or ErrNotFound.
	Lookup(ctx context.Context, plate string) (VehicleRecord, error)
	// Register creates a record and returns it with its generated id.
	Register(ctx context.Context, plate, ownerName, phone string) (VehicleRecord, error)
	// ListAll returns every record ordered by id.
	ListAll(ctx context.Context) ([]VehicleRecord, error)
}

// NormalizePlate canonicalises recognised or typed plate text: surrounding
// and inner whitespace is removed and letters are upper-cased.
func NormalizePlate(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
}
