package record

import (
	"context"

	"github.com/m-mizutani/wattrec/pkg/model"
	"github.com/m-mizutani/wattrec/pkg/utils/logging"
)

// Delete removes a record and returns the removed value
func (u *UseCase) Delete(ctx context.Context, id model.RecordID) (*model.EnergyUsage, error) {
	rec, err := u.repo.Remove(ctx, id)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Debug("record deleted", "id", id)
	return rec, nil
}
