package echoServer

import (
	"github.com/labstack/echo/v4"

	"github.com/Ahmadfnugroho/gpr-sub003/app/echoServer/controller/availability"
	"github.com/Ahmadfnugroho/gpr-sub003/app/echoServer/controller/booking"
	"github.com/Ahmadfnugroho/gpr-sub003/app/echoServer/controller/catalog"
)

type C struct {
	Availability *availability.Controller
	Catalog      *catalog.Controller
	Booking      *booking.Controller
}

func Register(e *echo.Echo, c C) {
	v1 := e.Group("/v1")

	// Availability
	v1.GET("/availability/products/:id", c.Availability.Product)
	v1.GET("/availability/bundles/:id", c.Availability.Bundle)
	v1.POST("/availability/batch", c.Availability.Batch)

	// Catalog
	v1.POST("/products", c.Catalog.CreateProduct)
	v1.GET("/products/:id/items", c.Catalog.ListItems)
	v1.POST("/products/:id/items", c.Catalog.RegisterItems)
	v1.PATCH("/items/:id/availability", c.Catalog.SetAvailability)
	v1.POST("/bundles", c.Catalog.CreateBundle)

	// Bookings
	v1.POST("/bookings", c.Booking.Create)
	v1.GET("/bookings/:id", c.Booking.Get)
	v1.PATCH("/bookings/:id/status", c.Booking.UpdateStatus)
}
