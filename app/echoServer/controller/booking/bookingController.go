package booking

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Ahmadfnugroho/gpr-sub003/model"
	bs "github.com/Ahmadfnugroho/gpr-sub003/service/booking"
	"github.com/Ahmadfnugroho/gpr-sub003/util/httpx"
)

type Controller struct {
	Svc bs.Service
	V   *validator.Validate
	Log *zap.Logger
}

// Create booking
// @Summary      Create booking
// @Description  Records a booking. Active bookings are rejected when stock or an assigned serial is taken.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateBookingReq  true  "booking"
// @Success      201  {object}  model.Booking
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "no stock or serial unavailable"
// @Router       /v1/bookings [post]
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	start, err := httpx.ParseStart(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "start_date: " + err.Error()})
	}
	end, err := httpx.ParseEnd(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "end_date: " + err.Error()})
	}

	lines := make([]model.BookingLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		target, err := model.TargetFromColumns(l.ProductID, l.BundlingID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
		}
		lines = append(lines, model.BookingLine{Target: target, Quantity: l.Quantity, SerialNumbers: l.SerialNumbers})
	}

	b, err := h.Svc.Create(c.Request().Context(), bs.CreateReq{
		StartDate: start,
		EndDate:   end,
		Status:    model.BookingStatus(req.Status),
		Lines:     lines,
	})
	if err != nil {
		return h.fail(c, "booking create", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// GET /v1/bookings/:id
func (h *Controller) Get(c echo.Context) error {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	b, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "booking get", err)
	}
	return c.JSON(http.StatusOK, b)
}

// Update booking status
// @Summary      Update booking status
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id       path  int              true  "booking id"
// @Param        payload  body  UpdateStatusReq  true  "new status"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Failure      409  {object}  map[string]any "illegal transition or stock taken"
// @Router       /v1/bookings/{id}/status [patch]
func (h *Controller) UpdateStatus(c echo.Context) error {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": echo.Map{"status": "one of pending booking paid on_rented cancel done"}})
	}
	if err := h.Svc.UpdateStatus(c.Request().Context(), id, model.BookingStatus(req.Status)); err != nil {
		return h.fail(c, "booking status", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": req.Status})
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch bs.Code(err) {
	case bs.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case bs.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	case bs.ErrNoStock, bs.ErrSerialUnavailable, bs.ErrBadTransition:
		return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
	default:
		h.Log.Error(op, zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
