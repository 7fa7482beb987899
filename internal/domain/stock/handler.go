package stock

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medstock/medstock/internal/domain/item"
	"github.com/medstock/medstock/internal/domain/ward"
	"github.com/medstock/medstock/internal/platform/auth"
	"github.com/medstock/medstock/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("pharmacist", "nurse"))
	read.GET("/stock/movements", h.ListMovements)
	read.GET("/stock/movements/ref/:refNo", h.MovementsByRefNo)
	read.GET("/stock/movements/last-date", h.LastMovementDate)
	read.GET("/stock/items/:code/lots", h.ListLots)
	read.GET("/stock/lots/:code", h.GetLot)
	read.GET("/stock/wards/:code/holdings", h.WardHoldings)

	write := api.Group("", auth.RequireRole("pharmacist"))
	write.POST("/stock/movements", h.NewMovement)
	write.POST("/stock/movements/charge", h.NewChargingMovements)
	write.POST("/stock/movements/discharge", h.NewDischargingMovements)
	write.DELETE("/stock/movements/:id", h.DeleteLastMovement)

	issue := api.Group("", auth.RequireRole("pharmacist", "nurse"))
	issue.POST("/stock/wards/:code/issues", h.IssueFromWard)
}

// multiRequest is the body of a multi-line charge or discharge.
type multiRequest struct {
	RefNo     string             `json:"ref_no"`
	Movements []*MovementRequest `json:"movements"`
}

func (h *Handler) NewMovement(c echo.Context) error {
	var req MovementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ms, err := h.svc.NewMovement(c.Request().Context(), &req)
	if err != nil {
		return movementError(err)
	}
	return c.JSON(http.StatusCreated, ms)
}

func (h *Handler) NewChargingMovements(c echo.Context) error {
	return h.newMultiple(c, h.svc.NewChargingMovements)
}

func (h *Handler) NewDischargingMovements(c echo.Context) error {
	return h.newMultiple(c, h.svc.NewDischargingMovements)
}

type postMultiFunc func(ctx context.Context, reqs []*MovementRequest, sharedRefNo string) ([]*Movement, error)

func (h *Handler) newMultiple(c echo.Context, post postMultiFunc) error {
	var req multiRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ms, err := post(c.Request().Context(), req.Movements, req.RefNo)
	if err != nil {
		return movementError(err)
	}
	return c.JSON(http.StatusCreated, ms)
}

func (h *Handler) MovementsByRefNo(c echo.Context) error {
	ms, err := h.svc.GetMovementsByRefNo(c.Request().Context(), c.Param("refNo"))
	if err != nil {
		return movementError(err)
	}
	return c.JSON(http.StatusOK, ms)
}

func (h *Handler) LastMovementDate(c echo.Context) error {
	d, err := h.svc.LastMovementDate(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]*time.Time{"last_date": d})
}

func (h *Handler) DeleteLastMovement(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteLastMovement(c.Request().Context(), id); err != nil {
		return movementError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListMovements(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filter{
		ItemCode:    c.QueryParam("item"),
		ItemType:    c.QueryParam("item_type"),
		WardCode:    c.QueryParam("ward"),
		MovTypeCode: c.QueryParam("mov_type"),
		LotCode:     c.QueryParam("lot"),
		OrderBy:     Order(c.QueryParam("order_by")),
	}
	var err error
	if f.DateFrom, err = parseDate(c.QueryParam("date_from")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date_from")
	}
	if f.DateTo, err = parseDate(c.QueryParam("date_to")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date_to")
	}
	if f.LotPrepFrom, err = parseDate(c.QueryParam("lot_prep_from")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid lot_prep_from")
	}
	if f.LotPrepTo, err = parseDate(c.QueryParam("lot_prep_to")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid lot_prep_to")
	}
	if f.LotDueFrom, err = parseDate(c.QueryParam("lot_due_from")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid lot_due_from")
	}
	if f.LotDueTo, err = parseDate(c.QueryParam("lot_due_to")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid lot_due_to")
	}

	ms, total, err := h.svc.GetMovements(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(ms, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListLots(c echo.Context) error {
	onlyAvailable := c.QueryParam("available") == "true"
	lots, err := h.svc.ListLots(c.Request().Context(), c.Param("code"), onlyAvailable)
	if err != nil {
		return movementError(err)
	}
	return c.JSON(http.StatusOK, lots)
}

func (h *Handler) GetLot(c echo.Context) error {
	lot, err := h.svc.GetLot(c.Request().Context(), c.Param("code"))
	if err != nil {
		return movementError(err)
	}
	return c.JSON(http.StatusOK, lot)
}

func (h *Handler) WardHoldings(c echo.Context) error {
	holdings, err := h.svc.WardHoldings(c.Request().Context(), c.Param("code"))
	if err != nil {
		return movementError(err)
	}
	return c.JSON(http.StatusOK, holdings)
}

// issueRequest is the body of a ward issue.
type issueRequest struct {
	ItemCode string `json:"item_code"`
	LotCode  string `json:"lot_code"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) IssueFromWard(c echo.Context) error {
	var req issueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.IssueFromWard(c.Request().Context(), c.Param("code"), req.ItemCode, req.LotCode, req.Quantity); err != nil {
		return movementError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// movementError maps the orchestrator's error taxonomy onto HTTP statuses.
// Validation failures keep their per-message detail.
func movementError(err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]any{
			"message":  "validation failed",
			"failures": verr.Messages,
		})
	case errors.Is(err, ErrInsufficientStock):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrRefNoInUse):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotLastMovement):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrMovementNotFound),
		errors.Is(err, ErrLotNotFound),
		errors.Is(err, item.ErrNotFound),
		errors.Is(err, ward.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
