package record

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/wattrec/pkg/model"
	"github.com/m-mizutani/wattrec/pkg/utils/logging"
)

// Add validates the payload, assigns an identifier, derives the
// recommendation and persists the new record. Validation and the encode
// size check both happen before any durable write, so a failed Add leaves
// the store unchanged.
func (u *UseCase) Add(ctx context.Context, payload model.EnergyUsagePayload) (*model.EnergyUsage, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	id, err := u.ids.Next()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to issue record id")
	}

	rec := &model.EnergyUsage{
		ID:             model.RecordID(id),
		UsageKWh:       payload.UsageKWh,
		Timestamp:      uint64(u.now().UnixNano()),
		DeviceType:     payload.DeviceType,
		Recommendation: model.Recommend(payload.UsageKWh),
	}

	if err := u.repo.Insert(ctx, rec); err != nil {
		return nil, err
	}

	logging.From(ctx).Debug("record added",
		"id", rec.ID, "device_type", rec.DeviceType, "usage_kwh", rec.UsageKWh)
	return rec, nil
}
