package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/menu-factory/internal/model"
)

func contextFor(target string) echo.Context {
	return echo.New().NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
}

func TestLangParam(t *testing.T) {
	assert.Equal(t, model.LangEU, langParam(contextFor("/?lang=eu")))
	assert.Equal(t, model.LangES, langParam(contextFor("/?lang=pt")))
	assert.Equal(t, model.LangES, langParam(contextFor("/")))
}

func TestBoolParam(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", "on"} {
		assert.True(t, boolParam(contextFor("/?allergens="+v), "allergens"), v)
	}
	assert.False(t, boolParam(contextFor("/?allergens=0"), "allergens"))
	assert.False(t, boolParam(contextFor("/"), "allergens"))
}

func TestDishID(t *testing.T) {
	c := contextFor("/")
	c.SetParamNames("id")
	c.SetParamValues("12")
	id, ok := dishID(c)
	assert.True(t, ok)
	assert.Equal(t, 12, id)

	c.SetParamValues("-1")
	_, ok = dishID(c)
	assert.False(t, ok)
}

func TestNewMenuHandlerRejectsNil(t *testing.T) {
	assert.Panics(t, func() { NewMenuHandler(nil) })
	assert.Panics(t, func() { NewEventsHandler(nil) })
}
