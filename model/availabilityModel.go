// model/availability.go
package model

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("range start is after range end")

// Range is a closed date-time interval.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r Range) Validate() error {
	if r.Start.After(r.End) {
		return ErrInvalidRange
	}
	return nil
}

// Overlaps reports whether [start, end] shares at least one instant with r.
// Touching endpoints count as overlapping (same-day handover).
func (r Range) Overlaps(start, end time.Time) bool {
	return !start.After(r.End) && !end.Before(r.Start)
}

type EntityType string

const (
	EntityProduct EntityType = "product"
	EntityBundle  EntityType = "bundle"
)

type EntityRef struct {
	Type EntityType `json:"type"`
	ID   int64      `json:"id"`
}

const DataIntegrityWarning = "DATA_INTEGRITY"

type Warning struct {
	Kind      string `json:"kind"`
	BookingID int64  `json:"booking_id"`
	LineID    int64  `json:"line_id"`
	Message   string `json:"message"`
}

type ComponentAvailability struct {
	ProductID        int64 `json:"product_id"`
	RequiredQuantity int   `json:"required_quantity"`
	TotalUnits       int   `json:"total_units"`
	AvailableUnits   int   `json:"available_units"`
	MaxBundles       int   `json:"max_bundles"`
	// Free serials of the component product, when requested.
	AvailableSerialNumbers []string `json:"available_serial_numbers,omitempty"`
}

type AvailabilityResult struct {
	EntityID               int64                   `json:"entity_id"`
	EntityType             EntityType              `json:"entity_type"`
	RangeStart             time.Time               `json:"range_start"`
	RangeEnd               time.Time               `json:"range_end"`
	TotalUnits             int                     `json:"total_units"`
	AvailableUnits         int                     `json:"available_units"`
	AvailableSerialNumbers []string                `json:"available_serial_numbers,omitempty"`
	SerialDetailIncomplete bool                    `json:"serial_detail_incomplete,omitempty"`
	Warnings               []Warning               `json:"warnings,omitempty"`
	LimitingComponent      *int64                  `json:"limiting_component,omitempty"`
	Components             []ComponentAvailability `json:"components,omitempty"`
}
