package repository

import (
	"context"

	"github.com/m-mizutani/wattrec/pkg/model"
)

// Repository defines the interface for energy usage record persistence
type Repository interface {
	// Insert persists the record at its ID, silently overwriting an
	// existing entry for the same ID
	Insert(ctx context.Context, rec *model.EnergyUsage) error

	// Get retrieves a record by ID, returning ErrNotFound if absent
	Get(ctx context.Context, id model.RecordID) (*model.EnergyUsage, error)

	// Remove deletes a record and returns the prior value, returning
	// ErrNotFound if absent
	Remove(ctx context.Context, id model.RecordID) (*model.EnergyUsage, error)

	// List returns all live records in ascending ID order
	List(ctx context.Context) ([]*model.EnergyUsage, error)

	// Compact rewrites the backing segment with only live entries
	Compact(ctx context.Context) error
}
