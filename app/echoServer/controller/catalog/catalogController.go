package catalog

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Ahmadfnugroho/gpr-sub003/model"
	cs "github.com/Ahmadfnugroho/gpr-sub003/service/catalog"
	"github.com/Ahmadfnugroho/gpr-sub003/util/httpx"
)

type Controller struct {
	Svc cs.Service
	V   *validator.Validate
	Log *zap.Logger
}

// @Summary  Create product
// @Tags     catalog
// @Accept   json
// @Produce  json
// @Param    payload  body  CreateProductReq  true  "product"
// @Success  201  {object}  map[string]any
// @Failure  400  {object}  map[string]any
// @Router   /v1/products [post]
func (h *Controller) CreateProduct(c echo.Context) error {
	var req CreateProductReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": echo.Map{"name": "required", "price": "gte 0"}})
	}
	id, err := h.Svc.CreateProduct(c.Request().Context(), req.Name, req.Price)
	if err != nil {
		return h.fail(c, "product create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// @Summary  Register serialized items
// @Tags     catalog
// @Accept   json
// @Produce  json
// @Param    id       path  int               true  "product id"
// @Param    payload  body  RegisterItemsReq  true  "serial numbers"
// @Success  201  {object}  map[string]any
// @Failure  400  {object}  map[string]any
// @Failure  404  {object}  map[string]any
// @Failure  409  {object}  map[string]any "serial already registered"
// @Router   /v1/products/{id}/items [post]
func (h *Controller) RegisterItems(c echo.Context) error {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req RegisterItemsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": echo.Map{"serial_numbers": "min 1, no blanks"}})
	}
	added, err := h.Svc.RegisterItems(c.Request().Context(), id, req.SerialNumbers)
	if err != nil {
		return h.fail(c, "register items", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"added": added})
}

// GET /v1/products/:id/items
func (h *Controller) ListItems(c echo.Context) error {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rows, err := h.Svc.ListItems(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "list items", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// PATCH /v1/items/:id/availability
func (h *Controller) SetAvailability(c echo.Context) error {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req SetAvailabilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": echo.Map{"is_available": "required"}})
	}
	if err := h.Svc.SetItemAvailability(c.Request().Context(), id, *req.IsAvailable); err != nil {
		return h.fail(c, "set availability", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

// @Summary  Create bundle
// @Tags     catalog
// @Accept   json
// @Produce  json
// @Param    payload  body  CreateBundleReq  true  "bundle with components"
// @Success  201  {object}  map[string]any
// @Failure  400  {object}  map[string]any
// @Failure  404  {object}  map[string]any "component product not found"
// @Router   /v1/bundles [post]
func (h *Controller) CreateBundle(c echo.Context) error {
	var req CreateBundleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	b := &model.Bundle{Name: req.Name, Price: req.Price}
	for _, comp := range req.Components {
		b.Components = append(b.Components, model.BundleComponent{ProductID: comp.ProductID, RequiredQuantity: comp.RequiredQuantity})
	}
	id, err := h.Svc.CreateBundle(c.Request().Context(), b)
	if err != nil {
		return h.fail(c, "bundle create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch cs.Code(err) {
	case cs.ErrBadInput, cs.ErrInvalidBundle:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case cs.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	case cs.ErrDuplicateSerial:
		return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
	default:
		h.Log.Error(op, zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
