package handler // handler package contains the management panel handlers

import (
	"net/http" // http provides status code constants
	"strings"  // strings trims names

	"github.com/labstack/echo/v4"   // echo is the web framework used for handlers
	"github.com/shopspring/decimal" // decimal carries the menu price

	"github.com/iliyamo/menu-factory/internal/menuview"
	"github.com/iliyamo/menu-factory/internal/model"
)

// ManageDishes handles GET /v1/gestion/dishes?mode= and returns every dish
// grouped for the management panel.
func (h *MenuHandler) ManageDishes(c echo.Context) error {
	mode, ok := menuview.ParseView(c.QueryParam("mode"))
	if !ok {
		return jsonError(c, http.StatusBadRequest, "mode must be menu, carta or raciones")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"mode":   mode,
		"groups": menuview.Manage(h.Svc.Dishes(c.Request().Context()), mode),
	})
}

// AddDish handles POST /v1/gestion/dishes.  Unset fields get defaults.
func (h *MenuHandler) AddDish(c echo.Context) error {
	var p model.DishPatch
	if err := c.Bind(&p); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	if p.NameES == nil || strings.TrimSpace(*p.NameES) == "" {
		return jsonError(c, http.StatusBadRequest, "ES_Nombre is required")
	}
	d, err := h.Svc.AddDish(c.Request().Context(), p)
	if err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

// UpdateDish handles PATCH /v1/gestion/dishes/:id with a partial dish.
func (h *MenuHandler) UpdateDish(c echo.Context) error {
	id, ok := dishID(c)
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid id")
	}
	var p model.DishPatch
	if err := c.Bind(&p); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	d, found, err := h.Svc.UpdateDish(c.Request().Context(), id, p)
	if err != nil {
		return storageError(c, err)
	}
	if !found {
		return jsonError(c, http.StatusNotFound, "dish not found")
	}
	return c.JSON(http.StatusOK, d)
}

// ToggleDish handles POST /v1/gestion/dishes/:id/toggle?field=active|ration.
func (h *MenuHandler) ToggleDish(c echo.Context) error {
	id, ok := dishID(c)
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	var (
		d     model.Dish
		found bool
		err   error
	)
	switch c.QueryParam("field") {
	case "active":
		d, found, err = h.Svc.ToggleActive(ctx, id)
	case "ration":
		d, found, err = h.Svc.ToggleRation(ctx, id)
	default:
		return jsonError(c, http.StatusBadRequest, "field must be active or ration")
	}
	if err != nil {
		return storageError(c, err)
	}
	if !found {
		return jsonError(c, http.StatusNotFound, "dish not found")
	}
	return c.JSON(http.StatusOK, d)
}

// SetRole handles PUT /v1/gestion/dishes/:id/role {"role": "PRIMERO"}.
// "NO" or an empty role takes the dish out of the daily menu.
func (h *MenuHandler) SetRole(c echo.Context) error {
	id, ok := dishID(c)
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	role, ok := model.ParseMenuRole(body.Role)
	if !ok {
		return jsonError(c, http.StatusBadRequest, "role must be PRIMERO, SEGUNDO, POSTRE, RACION or NO")
	}
	d, found, err := h.Svc.SetMenuRole(c.Request().Context(), id, role)
	if err != nil {
		return storageError(c, err)
	}
	if !found {
		return jsonError(c, http.StatusNotFound, "dish not found")
	}
	return c.JSON(http.StatusOK, d)
}

// DeleteDish handles DELETE /v1/gestion/dishes/:id.  Unknown ids succeed.
func (h *MenuHandler) DeleteDish(c echo.Context) error {
	id, ok := dishID(c)
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Svc.DeleteDish(c.Request().Context(), id); err != nil {
		return storageError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ReorderDishes handles PUT /v1/gestion/dishes/order {"ids": [...]}.
func (h *MenuHandler) ReorderDishes(c echo.Context) error {
	var body struct {
		IDs []int `json:"ids"`
	}
	if err := c.Bind(&body); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	dishes, err := h.Svc.ReorderDishes(c.Request().Context(), body.IDs)
	if err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, dishes)
}

// MoveDish handles POST /v1/gestion/dishes/:id/move {"target_id": n}, the
// drag-and-drop gesture of the panel.
func (h *MenuHandler) MoveDish(c echo.Context) error {
	id, ok := dishID(c)
	if !ok {
		return jsonError(c, http.StatusBadRequest, "invalid id")
	}
	var body struct {
		TargetID int `json:"target_id"`
	}
	if err := c.Bind(&body); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	dishes, err := h.Svc.MoveDish(c.Request().Context(), id, body.TargetID)
	if err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, dishes)
}

// GetPrice handles GET /v1/gestion/price.
func (h *MenuHandler) GetPrice(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"price": h.Svc.MenuPrice(c.Request().Context())})
}

// SetPrice handles PUT /v1/gestion/price {"price": 18.5}.  Negative values
// answer 400.
func (h *MenuHandler) SetPrice(c echo.Context) error {
	var body struct {
		Price *decimal.Decimal `json:"price"`
	}
	if err := c.Bind(&body); err != nil || body.Price == nil {
		return jsonError(c, http.StatusBadRequest, "price is required")
	}
	if err := h.Svc.SetMenuPrice(c.Request().Context(), *body.Price); err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"price": *body.Price})
}

// Analyze handles POST /v1/gestion/analyze {"name": "..."}.  It always
// answers 200; a failed analysis comes back empty with a warning.
func (h *MenuHandler) Analyze(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.Name) == "" {
		return jsonError(c, http.StatusBadRequest, "name is required")
	}
	analysis, warning := h.Svc.AnalyzeDish(c.Request().Context(), strings.TrimSpace(body.Name))
	resp := echo.Map{"translations": analysis.Translations, "allergens": analysis.Allergens}
	if warning != "" {
		resp["warning"] = warning
	}
	return c.JSON(http.StatusOK, resp)
}
