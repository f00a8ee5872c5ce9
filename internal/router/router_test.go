package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/menu-factory/internal/events"
	"github.com/iliyamo/menu-factory/internal/handler"
	"github.com/iliyamo/menu-factory/internal/kv"
	"github.com/iliyamo/menu-factory/internal/model"
	"github.com/iliyamo/menu-factory/internal/repository"
	"github.com/iliyamo/menu-factory/internal/service"
)

type server struct {
	e   *echo.Echo
	svc *service.MenuService
	hub *events.Hub
}

func newServer(t *testing.T) server {
	t.Helper()
	store := kv.NewMemory()
	hub := events.NewHub(16)
	svc := service.NewMenuService(
		repository.NewRegistry(store),
		repository.NewDishStore(store),
		repository.NewPriceStore(store, repository.DefaultMenuPrice),
		nil, hub,
	)
	pass := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	h := handler.NewMenuHandler(svc)

	e := echo.New()
	RegisterRoutes(e)
	RegisterPublic(e, h, pass)
	RegisterEvents(e, handler.NewEventsHandler(hub))
	RegisterGestion(e, h, pass)
	RegisterFactory(e, h, pass)
	return server{e: e, svc: svc, hub: hub}
}

func (s server) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	s.do(t, http.MethodGet, "/v1/snapshot", "")
	rec = s.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "menu_dish_loads_total")
}

func TestClientMenu(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/v1/menu?view=carta&lang=en&allergens=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	inst := body["instance"].(map[string]any)
	assert.Equal(t, model.MasterID, inst["id"])
	menu := body["menu"].(map[string]any)
	assert.Equal(t, "Menu", menu["title"])
	assert.Equal(t, "EN", menu["lang"])
	assert.NotEmpty(t, menu["sections"])
	assert.Equal(t, "Allergen Information", menu["legend_title"])

	rec = s.do(t, http.MethodGet, "/v1/menu?view=brunch", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDishLifecycle(t *testing.T) {
	s := newServer(t)
	changes, cancel := s.hub.Subscribe()
	defer cancel()

	rec := s.do(t, http.MethodPost, "/v1/gestion/dishes", `{"ES_Nombre":"Txangurro","Tipo":"MARISCO","Precio":"23.5"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	id := int(created["ID_Plato"].(float64))
	assert.Equal(t, 23.5, created["Precio"])
	assert.Equal(t, true, created["Es_Racion"])
	assert.Nil(t, created["Rol_Menu"])
	assert.Equal(t, id, (<-changes).DishID)

	path := "/v1/gestion/dishes/" + strconv.Itoa(id)
	rec = s.do(t, http.MethodPatch, path, `{"EN_Nombre":"Spider crab","Rol_Menu":"SEGUNDO"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SEGUNDO", decode(t, rec)["Rol_Menu"])

	rec = s.do(t, http.MethodPut, path+"/role", `{"role":"NO"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["Rol_Menu"])

	rec = s.do(t, http.MethodPut, path+"/role", `{"role":"CUARTO"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, path+"/toggle?field=active", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["Activo_Dia"])

	rec = s.do(t, http.MethodPost, path+"/toggle?field=price", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPatch, "/v1/gestion/dishes/99999", `{"EN_Nombre":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodPatch, "/v1/gestion/dishes/abc", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	for _, d := range s.svc.Dishes(context.Background()) {
		assert.NotEqual(t, id, d.ID)
	}
}

func TestAddDishRequiresSpanishName(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodPost, "/v1/gestion/dishes", `{"EN_Nombre":"Only English"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNegativePricesAreRejected(t *testing.T) {
	s := newServer(t)
	before := s.svc.Dishes(context.Background())

	rec := s.do(t, http.MethodPost, "/v1/gestion/dishes", `{"ES_Nombre":"Sopa","Precio":-5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPatch, "/v1/gestion/dishes/1", `{"Precio":-3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPut, "/v1/gestion/price", `{"price":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, before, s.svc.Dishes(context.Background()))
	assert.Equal(t, "16.50", s.svc.MenuPrice(context.Background()).StringFixed(2))
}

func TestAllergenPatchIsNormalised(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPatch, "/v1/gestion/dishes/1", `{"Alergenos":["LACTEOS","GLUTEN","gluten","NOT_AN_ALLERGEN"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []any{"LACTEOS", "GLUTEN"}, decode(t, rec)["Alergenos"])

	stored := s.svc.Dishes(context.Background())[0]
	assert.Equal(t, model.Allergens{model.AllergenDairy, model.AllergenGluten}, stored.Allergens)
}

func TestOrderAndMove(t *testing.T) {
	s := newServer(t)
	_, err := s.svc.CreateInstance(context.Background(), service.CreateInstanceRequest{
		Name: "Casa",
		Seed: []model.Dish{{ID: 1, NameES: "a"}, {ID: 2, NameES: "b"}, {ID: 3, NameES: "c"}},
	})
	require.NoError(t, err)

	rec := s.do(t, http.MethodPut, "/v1/gestion/dishes/order", `{"ids":[3,1]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/v1/gestion/dishes/order", `{"ids":[3,1,2]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/gestion/dishes/2/move", `{"target_id":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var dishes []model.Dish
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dishes))
	got := []int{}
	for _, d := range dishes {
		got = append(got, d.ID)
	}
	assert.Equal(t, []int{2, 3, 1}, got)

	rec = s.do(t, http.MethodGet, "/v1/gestion/dishes?mode=carta", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "carta", decode(t, rec)["mode"])
}

func TestPrice(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodGet, "/v1/gestion/price", "")
	assert.Equal(t, 16.5, decode(t, rec)["price"])

	rec = s.do(t, http.MethodPut, "/v1/gestion/price", `{"price": 18.9}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/v1/gestion/price", "")
	assert.Equal(t, 18.9, decode(t, rec)["price"])

	rec = s.do(t, http.MethodPut, "/v1/gestion/price", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeWithoutOracleWarns(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodPost, "/v1/gestion/analyze", `{"name":"Merluza"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "AI analysis is not configured", body["warning"])
	assert.Empty(t, body["allergens"])

	rec = s.do(t, http.MethodPost, "/v1/gestion/analyze", `{"name":" "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFactory(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/v1/factory/instances", `{"name":"Casa Pepe","slogan":"Desde 1970","theme":{"font":"font-inter","style":"modern"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode(t, rec)["id"].(string)
	assert.True(t, strings.HasPrefix(id, "casa_pepe_"))

	rec = s.do(t, http.MethodGet, "/v1/factory/instances", "")
	body := decode(t, rec)
	assert.Equal(t, id, body["active"])
	assert.Len(t, body["instances"], 2)

	rec = s.do(t, http.MethodDelete, "/v1/factory/instances/"+model.MasterID, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/factory/instances/nope/load", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, key := range []string{repository.RegistryKey, model.PriceKey(model.MasterID)} {
		rec = s.do(t, http.MethodDelete, "/v1/factory/instances/"+key, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, key)
	}
	assert.Len(t, s.svc.Instances(context.Background()), 2)

	rec = s.do(t, http.MethodPost, "/v1/factory/instances", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/v1/factory/instances/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, model.MasterID, s.svc.ActiveInstance(context.Background()).ID)
}

func TestFactoryUploadWithoutOracleFails(t *testing.T) {
	s := newServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Txoko"))
	fw, err := mw.CreateFormFile("file", "carta.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("Croquetas 8€"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/factory/instances", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Len(t, s.svc.Instances(context.Background()), 1)
}
