package catalog

type CreateProductReq struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
}

type RegisterItemsReq struct {
	SerialNumbers []string `json:"serial_numbers" validate:"required,min=1,dive,required"`
}

type SetAvailabilityReq struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

type CreateBundleReq struct {
	Name       string         `json:"name" validate:"required"`
	Price      float64        `json:"price" validate:"gte=0"`
	Components []ComponentReq `json:"components" validate:"required,min=1,dive"`
}

type ComponentReq struct {
	ProductID        int64 `json:"product_id" validate:"required,gt=0"`
	RequiredQuantity int   `json:"required_quantity" validate:"required,gte=1"`
}
