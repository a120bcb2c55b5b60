package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/marketplace-api/internal/apperr"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/sale"
)

func testCtx(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), rec
}

func TestRespondErr(t *testing.T) {
	t.Run("business kinds map to their status", func(t *testing.T) {
		cases := []struct {
			err  error
			code int
		}{
			{apperr.New(apperr.KindValidation, "bad"), http.StatusBadRequest},
			{apperr.New(apperr.KindNotFound, "gone"), http.StatusNotFound},
			{apperr.New(apperr.KindConflict, "taken"), http.StatusConflict},
			{apperr.New(apperr.KindAuth, "who"), http.StatusUnauthorized},
		}
		for _, tc := range cases {
			c, rec := testCtx(t)
			require.NoError(t, respondErr(c, tc.err))
			assert.Equal(t, tc.code, rec.Code)
		}
	})

	t.Run("internal faults stay opaque", func(t *testing.T) {
		c, rec := testCtx(t)
		require.NoError(t, respondErr(c, errors.New("dsn=root:hunter2@db")))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "hunter2")
	})
}

func TestToSaleResp(t *testing.T) {
	cancelledAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	d := &sale.Detail{
		Sale: model.Sale{
			ID:                3,
			Quantity:          4,
			UnitPriceSnapshot: decimal.RequireFromString("25.50"),
			PaymentMethod:     model.PaymentCash,
			Status:            model.SaleStatusCancelled,
			RestockedQuantity: 4,
			CancelledAt:       &cancelledAt,
		},
		ProductName: "keyboard",
		SellerName:  "alice",
		BuyerName:   "bob",
	}

	resp := toSaleResp(d)
	assert.Equal(t, "25.50", resp.UnitPrice)
	assert.Equal(t, "102.00", resp.TotalPrice)
	assert.Equal(t, "CASH", resp.PaymentMethod)
	assert.Equal(t, model.SaleStatusCancelled, resp.Status)
	assert.Equal(t, uint32(4), resp.RestockedQuantity)
	require.NotNil(t, resp.CancelledAt)
	assert.Equal(t, cancelledAt, *resp.CancelledAt)
}
