package record

import (
	"context"

	"github.com/m-mizutani/wattrec/pkg/model"
)

// List retrieves all live records in ascending ID order
func (u *UseCase) List(ctx context.Context) ([]*model.EnergyUsage, error) {
	recs, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return recs, nil
}
