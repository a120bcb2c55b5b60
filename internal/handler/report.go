package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/repository"
)

// ReportHandler serves the admin reporting endpoints. Revenue figures
// come from per-sale price snapshots, so they are stable against later
// price edits.
type ReportHandler struct {
	Reports *repository.ReportRepo
}

func NewReportHandler(r *repository.ReportRepo) *ReportHandler {
	return &ReportHandler{Reports: r}
}

// SalesByPeriod aggregates the caller's active sales between the `from`
// and `to` query parameters (RFC 3339 or YYYY-MM-DD; `to` as a bare date
// means end of that day).
func (h *ReportHandler) SalesByPeriod(c echo.Context) error {
	id, ok := caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
	}
	from, ok := parseTimeParam(c.QueryParam("from"), false)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from date"})
	}
	to, ok := parseTimeParam(c.QueryParam("to"), true)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to date"})
	}
	if to.Before(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must not precede from"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rep, err := h.Reports.SalesByPeriod(ctx, id.UserID, from, to)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

// RevenueByProduct aggregates the active sales of one of the caller's
// products. A product owned by someone else reads as not found.
func (h *ReportHandler) RevenueByProduct(c echo.Context) error {
	id, ok := caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
	}
	productID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rep, err := h.Reports.RevenueByProduct(ctx, id.UserID, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

// parseTimeParam accepts RFC 3339 timestamps or bare dates. endOfDay
// widens a bare date to 23:59:59 so a from/to pair of equal dates still
// spans the whole day.
func parseTimeParam(s string, endOfDay bool) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t.UTC(), true
}
