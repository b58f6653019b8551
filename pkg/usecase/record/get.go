package record

import (
	"context"

	"github.com/m-mizutani/wattrec/pkg/model"
)

// Get retrieves a record by ID
func (u *UseCase) Get(ctx context.Context, id model.RecordID) (*model.EnergyUsage, error) {
	rec, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return rec, nil
}
