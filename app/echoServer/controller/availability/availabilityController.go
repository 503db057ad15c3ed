package availability

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Ahmadfnugroho/gpr-sub003/model"
	as "github.com/Ahmadfnugroho/gpr-sub003/service/availability"
	"github.com/Ahmadfnugroho/gpr-sub003/util/httpx"
)

type Controller struct {
	Svc as.Service
	V   *validator.Validate
	Log *zap.Logger
}

// Product availability
// @Summary      Product availability
// @Description  Units (and optionally serial numbers) of a product free over a closed date range
// @Tags         availability
// @Produce      json
// @Param        id       path   int     true   "product id"
// @Param        start    query  string  true   "RFC3339 or YYYY-MM-DD"
// @Param        end      query  string  true   "RFC3339 or YYYY-MM-DD"
// @Param        serials  query  bool    false  "include free serial numbers"
// @Param        fresh    query  bool    false  "skip cached results"
// @Success      200  {object}  model.AvailabilityResult
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/availability/products/{id} [get]
func (h *Controller) Product(c echo.Context) error {
	return h.single(c, model.EntityProduct)
}

// Bundle availability
// @Summary      Bundle availability
// @Description  Number of complete bundles free over a closed date range, with the limiting component
// @Tags         availability
// @Produce      json
// @Param        id       path   int     true   "bundle id"
// @Param        start    query  string  true   "RFC3339 or YYYY-MM-DD"
// @Param        end      query  string  true   "RFC3339 or YYYY-MM-DD"
// @Param        serials  query  bool    false  "include free serial numbers per component"
// @Param        fresh    query  bool    false  "skip cached results"
// @Success      200  {object}  model.AvailabilityResult
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Failure      422  {object}  map[string]any "bundle definition is invalid"
// @Router       /v1/availability/bundles/{id} [get]
func (h *Controller) Bundle(c echo.Context) error {
	return h.single(c, model.EntityBundle)
}

func (h *Controller) single(c echo.Context, typ model.EntityType) error {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rng, err := queryRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	serials, err1 := httpx.Flag(c, "serials")
	fresh, err2 := httpx.Flag(c, "fresh")
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "serials and fresh must be booleans"})
	}

	res, err := h.Svc.Compute(c.Request().Context(), model.EntityRef{Type: typ, ID: id}, rng, as.Options{Serials: serials, Fresh: fresh})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Batch availability
// @Summary      Batch availability
// @Description  Availability of many products and bundles over the same range, in request order
// @Tags         availability
// @Accept       json
// @Produce      json
// @Param        payload  body  BatchReq  true  "entities and range"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/availability/batch [post]
func (h *Controller) Batch(c echo.Context) error {
	var req BatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	start, err := httpx.ParseStart(req.Start)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "start: " + err.Error()})
	}
	end, err := httpx.ParseEnd(req.End)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "end: " + err.Error()})
	}

	refs := make([]model.EntityRef, len(req.Entities))
	for i, e := range req.Entities {
		refs[i] = model.EntityRef{Type: model.EntityType(e.Type), ID: e.ID}
	}
	rows, err := h.Svc.ComputeMultiple(c.Request().Context(), refs, model.Range{Start: start, End: end}, as.Options{Serials: req.Serials, Fresh: req.Fresh})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

func (h *Controller) fail(c echo.Context, err error) error {
	switch as.Code(err) {
	case as.ErrInvalidRange, as.ErrInvalidEntity:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case as.ErrEntityNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	case as.ErrInvalidBundle:
		h.Log.Warn("invalid bundle definition", zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": err.Error()})
	default:
		h.Log.Error("availability", zap.Error(err), zap.String("path", c.Path()))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func queryRange(c echo.Context) (model.Range, error) {
	start, err := httpx.ParseStart(c.QueryParam("start"))
	if err != nil {
		return model.Range{}, err
	}
	end, err := httpx.ParseEnd(c.QueryParam("end"))
	if err != nil {
		return model.Range{}, err
	}
	return model.Range{Start: start, End: end}, nil
}
