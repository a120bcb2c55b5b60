package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/repository"
)

// ProductHandler serves the admin product CRUD and the public catalog.
type ProductHandler struct {
	Products *repository.ProductRepo
}

func NewProductHandler(p *repository.ProductRepo) *ProductHandler {
	return &ProductHandler{Products: p}
}

type productReq struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	UnitPrice         string `json:"unit_price"`
	AvailableQuantity uint32 `json:"available_quantity"`
}

func (r *productReq) parse() (name, desc string, price decimal.Decimal, err error) {
	name = strings.TrimSpace(r.Name)
	if name == "" {
		return "", "", decimal.Zero, errors.New("name required")
	}
	price, err = decimal.NewFromString(strings.TrimSpace(r.UnitPrice))
	if err != nil {
		return "", "", decimal.Zero, errors.New("unit_price must be a decimal number")
	}
	if price.IsNegative() {
		return "", "", decimal.Zero, errors.New("unit_price must not be negative")
	}
	return name, strings.TrimSpace(r.Description), price, nil
}

// Create lists a new product owned by the calling admin.
func (h *ProductHandler) Create(c echo.Context) error {
	id, ok := caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name, desc, price, err := req.parse()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p := &model.Product{
		OwnerID:           id.UserID,
		Name:              name,
		Description:       desc,
		UnitPrice:         price,
		AvailableQuantity: req.AvailableQuantity,
	}
	if err := h.Products.Create(ctx, p); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, toProductResp(p))
}

// Update edits name, description, price and stock of a product the
// caller owns. Price edits never touch existing sales; those carry
// their own snapshot.
func (h *ProductHandler) Update(c echo.Context) error {
	id, ok := caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
	}
	productID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name, desc, price, err := req.parse()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p := &model.Product{
		ID:                productID,
		Name:              name,
		Description:       desc,
		UnitPrice:         price,
		AvailableQuantity: req.AvailableQuantity,
	}
	if err := h.Products.Update(ctx, p, id.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return respondErr(c, err)
	}

	fresh, err := h.Products.GetByID(ctx, productID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toProductResp(fresh))
}

// Delete withdraws a product the caller owns. The row is kept so sale
// history still joins; it just stops being purchasable.
func (h *ProductHandler) Delete(c echo.Context) error {
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

	if err := h.Products.SoftDelete(ctx, productID, id.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List returns all live products. Public; sits behind the response cache.
func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	products, err := h.Products.List(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]productResp, 0, len(products))
	for i := range products {
		out = append(out, toProductResp(&products[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"products": out})
}

// Get returns one live product.
func (h *ProductHandler) Get(c echo.Context) error {
	productID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toProductResp(p))
}
