package handler // handler defines http handlers

import (
	"errors"   // errors maps sentinel values to status codes
	"net/http" // http provides status code constants
	"strconv"  // strconv converts path parameters
	"strings"  // strings trims query values

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/menu-factory/internal/model"
	"github.com/iliyamo/menu-factory/internal/repository"
	"github.com/iliyamo/menu-factory/internal/service"
)

// MenuHandler bundles what every menu route needs.
type MenuHandler struct {
	Svc *service.MenuService
}

// NewMenuHandler constructs a MenuHandler and panics if svc is nil.
func NewMenuHandler(svc *service.MenuService) *MenuHandler {
	if svc == nil {
		panic("nil service passed to NewMenuHandler")
	}
	return &MenuHandler{Svc: svc}
}

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

// dishID parses the :id path parameter.
func dishID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// langParam reads ?lang=, defaulting to Spanish for empty or unknown codes.
func langParam(c echo.Context) model.Language {
	if lang, ok := model.ParseLanguage(c.QueryParam("lang")); ok {
		return lang
	}
	return model.LangES
}

// boolParam accepts 1/true/yes/on.
func boolParam(c echo.Context, name string) bool {
	switch strings.ToLower(strings.TrimSpace(c.QueryParam(name))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// storageError maps data layer write errors to a response.
func storageError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrProtectedInstance):
		return jsonError(c, http.StatusForbidden, "the master instance cannot be deleted")
	case errors.Is(err, repository.ErrInstanceNotFound):
		return jsonError(c, http.StatusNotFound, "instance not found")
	case errors.Is(err, service.ErrNotPermutation):
		return jsonError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNegativePrice):
		return jsonError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNameRequired):
		return jsonError(c, http.StatusBadRequest, "name is required")
	case errors.Is(err, service.ErrGenerationFailed):
		return jsonError(c, http.StatusBadGateway, "could not generate the menu, try again or create it empty")
	}
	c.Logger().Errorf("menu: storage write failed: %v", err)
	return jsonError(c, http.StatusInternalServerError, "could not save changes")
}
