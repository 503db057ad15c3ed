// model/bundle.go
package model

type BundleComponent struct {
	ProductID        int64 `json:"product_id"`
	RequiredQuantity int   `json:"required_quantity"`
}

type Bundle struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	Price      float64           `json:"price"`
	Components []BundleComponent `json:"components"`
}
