// model/item.go
package model

import "time"

type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// SerializedItem is one physical rental unit. IsAvailable is the static
// admin flag; time based availability ignores it.
type SerializedItem struct {
	ID           int64      `json:"id"`
	ProductID    int64      `json:"product_id"`
	SerialNumber string     `json:"serial_number"`
	IsAvailable  bool       `json:"is_available"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}
