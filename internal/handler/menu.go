package handler // handler package contains the public menu handlers

import (
	"net/http" // http provides status code constants

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/iliyamo/menu-factory/internal/menuview"
	"github.com/iliyamo/menu-factory/internal/model"
)

type publicInstance struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Slogan string       `json:"slogan"`
	Theme  *model.Theme `json:"theme,omitempty"`
}

// ClientMenu handles GET /v1/menu?view=&lang=&allergens= and returns the
// customer view of the active instance.
func (h *MenuHandler) ClientMenu(c echo.Context) error {
	view, ok := menuview.ParseView(c.QueryParam("view"))
	if !ok {
		return jsonError(c, http.StatusBadRequest, "view must be menu, carta or raciones")
	}
	lang := langParam(c)
	ctx := c.Request().Context()

	snap := h.Svc.Snapshot(ctx)
	inst := publicInstance{
		ID:     snap.Instance.ID,
		Name:   snap.Instance.Name,
		Slogan: h.Svc.Translate(ctx, snap.Instance.Slogan, lang), // falls back to the stored slogan
		Theme:  snap.Instance.Theme,
	}
	return c.JSON(http.StatusOK, echo.Map{
		"instance": inst,
		"menu":     menuview.Client(snap.Dishes, snap.Price, view, lang, boolParam(c, "allergens")),
	})
}

// Snapshot handles GET /v1/snapshot: active instance, dishes and price in
// one read.
func (h *MenuHandler) Snapshot(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Svc.Snapshot(c.Request().Context()))
}
