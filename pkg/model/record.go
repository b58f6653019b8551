package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// RecordID is a unique identifier for an energy usage record. IDs are
// issued by the durable counter and are strictly increasing; a deleted
// record's ID is never reused.
type RecordID uint64

// EnergyUsage is a single observation of a device's energy consumption.
// All fields are immutable once the record has been created.
type EnergyUsage struct {
	ID             RecordID       `json:"id"`
	UsageKWh       float64        `json:"usage_kwh"`
	Timestamp      uint64         `json:"timestamp"` // nanoseconds since epoch
	DeviceType     string         `json:"device_type"`
	Recommendation Recommendation `json:"recommendation"`
}

// Recommendation is an optional energy-saving advice text. Valid reports
// whether the text is present, so absence does not need a nil pointer.
type Recommendation struct {
	Text  string
	Valid bool
}

func (r Recommendation) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Text)
}

func (r *Recommendation) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Recommendation{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return goerr.Wrap(err, "failed to unmarshal recommendation")
	}
	*r = Recommendation{Text: s, Valid: true}
	return nil
}

// EnergyUsagePayload is the user-provided input for creating a record.
type EnergyUsagePayload struct {
	UsageKWh   float64 `json:"usage_kwh"`
	DeviceType string  `json:"device_type"`
}

// Validate checks the creation invariants of the payload
func (p *EnergyUsagePayload) Validate() error {
	if p.UsageKWh <= 0 {
		return goerr.Wrap(ErrInvalidInput, "usage_kwh must be greater than zero",
			goerr.V("usage_kwh", p.UsageKWh))
	}
	if p.DeviceType == "" {
		return goerr.Wrap(ErrInvalidInput, "device_type is empty")
	}
	return nil
}

const (
	highUsageThreshold     = 10.0
	moderateUsageThreshold = 5.0
)

// Recommend derives the energy-saving advice for a usage value. The
// thresholds and messages are a fixed policy table.
func Recommend(usageKWh float64) Recommendation {
	switch {
	case usageKWh > highUsageThreshold:
		return Recommendation{
			Text:  "High energy usage detected. Consider reducing the number of devices or optimizing usage.",
			Valid: true,
		}
	case usageKWh > moderateUsageThreshold:
		return Recommendation{
			Text:  "Moderate energy usage. Consider using energy-efficient devices.",
			Valid: true,
		}
	default:
		return Recommendation{
			Text:  "Low energy usage. Keep up the good work!",
			Valid: true,
		}
	}
}
