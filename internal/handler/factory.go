package handler // handler package contains the instance factory handlers

import (
	"encoding/json" // json decodes the theme form field
	"io"            // io reads uploaded menus
	"net/http"      // http provides status code constants
	"strings"       // strings inspects the content type

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/iliyamo/menu-factory/internal/model"
	"github.com/iliyamo/menu-factory/internal/service"
)

// maxUpload caps uploaded menus sent to the oracle.
const maxUpload = 10 << 20

type createInstanceBody struct {
	Name   string       `json:"name"`
	Slogan string       `json:"slogan"`
	Prompt string       `json:"prompt"`
	Theme  *model.Theme `json:"theme"`
	Seed   []model.Dish `json:"initialPlatos"`
}

// ListInstances handles GET /v1/factory/instances.
func (h *MenuHandler) ListInstances(c echo.Context) error {
	ctx := c.Request().Context()
	return c.JSON(http.StatusOK, echo.Map{
		"active":    h.Svc.ActiveInstance(ctx).ID,
		"instances": h.Svc.Instances(ctx),
	})
}

// CreateInstance handles POST /v1/factory/instances.  It accepts JSON or a
// multipart form with an optional "file" (image, PDF or text menu) that the
// oracle turns into the seed.  The new instance becomes active.
func (h *MenuHandler) CreateInstance(c echo.Context) error {
	var req service.CreateInstanceRequest
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		req.Name = c.FormValue("name")
		req.Slogan = c.FormValue("slogan")
		req.Prompt = c.FormValue("prompt")
		if raw := c.FormValue("theme"); raw != "" {
			var theme model.Theme
			if err := json.Unmarshal([]byte(raw), &theme); err != nil {
				return jsonError(c, http.StatusBadRequest, "invalid theme")
			}
			req.Theme = &theme
		}
		if fh, err := c.FormFile("file"); err == nil {
			if fh.Size > maxUpload {
				return jsonError(c, http.StatusRequestEntityTooLarge, "file too large")
			}
			f, err := fh.Open()
			if err != nil {
				return jsonError(c, http.StatusBadRequest, "could not read file")
			}
			defer f.Close()
			if req.File, err = io.ReadAll(f); err != nil {
				return jsonError(c, http.StatusBadRequest, "could not read file")
			}
			req.MimeType = fh.Header.Get(echo.HeaderContentType)
			if req.MimeType == "" {
				req.MimeType = http.DetectContentType(req.File)
			}
		}
	} else {
		var body createInstanceBody
		if err := c.Bind(&body); err != nil {
			return jsonError(c, http.StatusBadRequest, "invalid request body")
		}
		req = service.CreateInstanceRequest{
			Name: body.Name, Slogan: body.Slogan, Prompt: body.Prompt, Theme: body.Theme, Seed: body.Seed,
		}
	}

	inst, err := h.Svc.CreateInstance(c.Request().Context(), req)
	if err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusCreated, inst)
}

// LoadInstance handles POST /v1/factory/instances/:id/load.
func (h *MenuHandler) LoadInstance(c echo.Context) error {
	inst, err := h.Svc.LoadInstance(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, inst)
}

// DeleteInstance handles DELETE /v1/factory/instances/:id.  The master
// instance answers 403.
func (h *MenuHandler) DeleteInstance(c echo.Context) error {
	if err := h.Svc.DeleteInstance(c.Request().Context(), c.Param("id")); err != nil {
		return storageError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
