// model/booking.go
package model

import (
	"errors"
	"time"
)

type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingBooked   BookingStatus = "booking"
	BookingPaid     BookingStatus = "paid"
	BookingOnRented BookingStatus = "on_rented"
	BookingCancel   BookingStatus = "cancel"
	BookingDone     BookingStatus = "done"
)

// IsActive reports whether bookings in this status hold inventory.
func (s BookingStatus) IsActive() bool {
	switch s {
	case BookingBooked, BookingPaid, BookingOnRented:
		return true
	}
	return false
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingBooked, BookingPaid, BookingOnRented, BookingCancel, BookingDone:
		return true
	}
	return false
}

type TargetKind string

const (
	TargetProduct TargetKind = "product"
	TargetBundle  TargetKind = "bundle"
)

var ErrInvalidTarget = errors.New("booking line must reference exactly one of product or bundle")

// Target is what a booking line rents: a product or a bundle, never both.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   int64      `json:"id"`
}

func ProductTarget(id int64) Target { return Target{Kind: TargetProduct, ID: id} }
func BundleTarget(id int64) Target  { return Target{Kind: TargetBundle, ID: id} }

func (t Target) Valid() bool {
	return (t.Kind == TargetProduct || t.Kind == TargetBundle) && t.ID > 0
}

// TargetFromColumns converts the nullable product_id / bundling_id pair.
func TargetFromColumns(productID, bundleID *int64) (Target, error) {
	switch {
	case productID != nil && bundleID == nil:
		return ProductTarget(*productID), nil
	case productID == nil && bundleID != nil:
		return BundleTarget(*bundleID), nil
	default:
		return Target{}, ErrInvalidTarget
	}
}

// Columns is the inverse of TargetFromColumns.
func (t Target) Columns() (productID, bundleID *int64) {
	id := t.ID
	if t.Kind == TargetProduct {
		return &id, nil
	}
	return nil, &id
}

type BookingLine struct {
	ID            int64    `json:"id"`
	BookingID     int64    `json:"booking_id"`
	Target        Target   `json:"target"`
	Quantity      int      `json:"quantity"`
	SerialNumbers []string `json:"serial_numbers,omitempty"`
}

type Booking struct {
	ID        int64         `json:"id"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Status    BookingStatus `json:"status"`
	Lines     []BookingLine `json:"lines"`
	CreatedAt time.Time     `json:"created_at"`
}

// LedgerLine is a booking line joined with the dates and status of its booking,
// the shape the availability engine reads.
type LedgerLine struct {
	BookingLine
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Status    BookingStatus `json:"status"`
}
