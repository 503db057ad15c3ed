package booking

type CreateBookingReq struct {
	StartDate string    `json:"start_date" validate:"required"`
	EndDate   string    `json:"end_date" validate:"required"`
	Status    string    `json:"status" validate:"omitempty,oneof=pending booking paid on_rented"`
	Lines     []LineReq `json:"lines" validate:"required,min=1,dive"`
}

// LineReq names exactly one of product_id or bundling_id.
type LineReq struct {
	ProductID     *int64   `json:"product_id" validate:"omitempty,gt=0"`
	BundlingID    *int64   `json:"bundling_id" validate:"omitempty,gt=0"`
	Quantity      int      `json:"quantity" validate:"required,gte=1"`
	SerialNumbers []string `json:"serial_numbers" validate:"omitempty,dive,required"`
}

type UpdateStatusReq struct {
	Status string `json:"status" validate:"required,oneof=pending booking paid on_rented cancel done"`
}
