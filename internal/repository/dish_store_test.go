package repository

import (
	"context"
	"testing"

	"github.com/jaswdr/faker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/menu-factory/internal/kv"
	"github.com/iliyamo/menu-factory/internal/metrics"
	"github.com/iliyamo/menu-factory/internal/model"
)

func TestLoadWithoutPersistedDataReturnsSeed(t *testing.T) {
	store := NewDishStore(kv.NewMemory())
	inst := testInstance("casa", 3)

	dishes, outcome := store.Load(context.Background(), inst)
	assert.Equal(t, LoadNotFound, outcome)
	requireSameDishes(t, inst.InitialDishes, dishes)

	// callers get a copy; mutating it leaves the seed intact
	dishes[0].NameES = "changed"
	assert.Equal(t, "Plato 1", inst.InitialDishes[0].NameES)
}

func TestLoadEmptyArrayFallsBackToSeed(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	store := NewDishStore(mem)
	inst := testInstance("casa", 5)
	require.NoError(t, mem.Set(ctx, "casa", "[]"))

	before := testutil.ToFloat64(metrics.DishLoads.WithLabelValues("empty_fallback"))
	dishes, outcome := store.Load(ctx, inst)
	assert.Equal(t, LoadEmptyFallback, outcome)
	assert.Len(t, dishes, 5)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.DishLoads.WithLabelValues("empty_fallback")))
}

func TestLoadEmptyArrayWithEmptySeedIsFound(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, "vacio", "[]"))

	dishes, outcome := NewDishStore(mem).Load(ctx, testInstance("vacio", 0))
	assert.Equal(t, LoadFound, outcome)
	assert.Empty(t, dishes)
}

func TestLoadCorruptFallsBackToSeed(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, "casa", "{not json"))

	dishes, outcome := NewDishStore(mem).Load(ctx, testInstance("casa", 2))
	assert.Equal(t, LoadCorrupt, outcome)
	assert.Len(t, dishes, 2)
}

func TestLoadUnavailableFallsBackToSeed(t *testing.T) {
	dishes, outcome := NewDishStore(kv.Disabled{}).Load(context.Background(), testInstance("casa", 2))
	assert.Equal(t, LoadUnavailable, outcome)
	assert.Len(t, dishes, 2)
}

func TestLoadBackfillsMissingFields(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	legacy := `[
	  {"ID_Plato":1,"Precio":9,"ES_Nombre":"Croquetas","Categoria":"CARTA","Tipo":"ENTRANTE","Activo_Dia":true,"Rol_Menu":null},
	  {"ID_Plato":2,"Precio":21,"ES_Nombre":"Chuleta","Categoria":"CARTA","Tipo":"CARNE","Activo_Dia":true,"Rol_Menu":null},
	  {"ID_Plato":3,"Precio":"7.50","ES_Nombre":"Rabas","Categoria":"CARTA","Tipo":"MARISCO","Activo_Dia":false,"Rol_Menu":"RACION","Es_Racion":false,"Alergenos":["MOLUSCOS"]}
	]`
	require.NoError(t, mem.Set(ctx, "casa", legacy))

	dishes, outcome := NewDishStore(mem).Load(ctx, testInstance("casa", 1))
	require.Equal(t, LoadFound, outcome)
	require.Len(t, dishes, 3)

	assert.True(t, dishes[0].Ration, "starters default to ration")
	assert.NotNil(t, dishes[0].Allergens)
	assert.Empty(t, dishes[0].Allergens)
	assert.False(t, dishes[1].Ration, "meat does not default to ration")

	// explicit values win over the heuristic
	assert.False(t, dishes[2].Ration)
	assert.Equal(t, model.Allergens{model.AllergenMolluscs}, dishes[2].Allergens)
	assert.Equal(t, model.RoleRation, dishes[2].Role)
	assert.True(t, decimal.RequireFromString("7.5").Equal(dishes[2].Price))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := faker.New()
	store := NewDishStore(kv.NewMemory())
	inst := testInstance("casa", 4)

	for i := 0; i < 20; i++ {
		want := randomDishes(fake, fake.IntBetween(1, 15))
		require.NoError(t, store.Save(ctx, inst.ID, want))
		got, outcome := store.Load(ctx, inst)
		require.Equal(t, LoadFound, outcome)
		requireSameDishes(t, want, got)
	}
}

func TestAddOnEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := NewDishStore(kv.NewMemory())
	inst := testInstance("nuevo", 0)

	p := model.DishPatch{
		NameES: model.Ptr("Sopa"),
		Price:  model.Ptr(decimal.NewFromInt(5)),
		Type:   model.Ptr(model.TypeStarter),
	}
	d, err := store.Add(ctx, inst, p)
	require.NoError(t, err)

	assert.Equal(t, 1, d.ID)
	assert.True(t, d.Active)
	assert.NotNil(t, d.Allergens)
	assert.Empty(t, d.Allergens)
	assert.True(t, d.Ration)
	assert.Equal(t, model.RoleNone, d.Role)
	assert.True(t, d.Categories.Has(model.CategoryCarta))

	dishes, _ := store.Load(ctx, inst)
	require.Len(t, dishes, 1)
	assert.Equal(t, "Sopa", dishes[0].NameES)
}

func TestAddUsesMaxPlusOne(t *testing.T) {
	ctx := context.Background()
	store := NewDishStore(kv.NewMemory())
	inst := testInstance("casa", 0)
	require.NoError(t, store.Save(ctx, inst.ID, []model.Dish{{ID: 3, NameES: "a"}, {ID: 7, NameES: "b"}}))

	d, err := store.Add(ctx, inst, model.DishPatch{NameES: model.Ptr("c")})
	require.NoError(t, err)
	assert.Equal(t, 8, d.ID)
}

func TestAddAlwaysExceedsExistingIDs(t *testing.T) {
	ctx := context.Background()
	fake := faker.New()
	store := NewDishStore(kv.NewMemory())
	inst := testInstance("casa", 0)

	for i := 0; i < 10; i++ {
		existing := randomDishes(fake, fake.IntBetween(1, 10))
		require.NoError(t, store.Save(ctx, inst.ID, existing))
		d, err := store.Add(ctx, inst, model.DishPatch{NameES: model.Ptr("x")})
		require.NoError(t, err)
		for _, e := range existing {
			assert.Greater(t, d.ID, e.ID)
		}
	}
}

func TestAddRespectsExplicitFields(t *testing.T) {
	ctx := context.Background()
	store := NewDishStore(kv.NewMemory())
	inst := testInstance("casa", 0)

	d, err := store.Add(ctx, inst, model.DishPatch{
		NameES:     model.Ptr("Ensalada mixta"),
		Type:       model.Ptr(model.TypeSalad),
		Ration:     model.Ptr(false),
		Active:     model.Ptr(false),
		Role:       model.Ptr(model.RoleFirst),
		Categories: model.Ptr(model.Categories{"MENU", "CARTA"}),
		Allergens:  model.Ptr(model.NewAllergens(model.AllergenEggs)),
	})
	require.NoError(t, err)
	assert.False(t, d.Ration)
	assert.False(t, d.Active)
	assert.Equal(t, model.RoleFirst, d.Role)
	assert.Equal(t, "MENU,CARTA", d.Categories.String())
	assert.Equal(t, model.Allergens{model.AllergenEggs}, d.Allergens)
}

func TestSequentialUpdatesMerge(t *testing.T) {
	ctx := context.Background()
	store := NewDishStore(kv.NewMemory())
	inst := testInstance("casa", 3)

	_, found, err := store.Update(ctx, inst, 2, model.DishPatch{Price: model.Ptr(decimal.NewFromInt(10))})
	require.NoError(t, err)
	require.True(t, found)
	_, found, err = store.Update(ctx, inst, 2, model.DishPatch{Active: model.Ptr(false)})
	require.NoError(t, err)
	require.True(t, found)

	dishes, _ := store.Load(ctx, inst)
	want := inst.Seed()
	want[1].Price = decimal.NewFromInt(10)
	want[1].Active = false
	requireSameDishes(t, want, dishes)
}

func TestUpdateNoOps(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	store := NewDishStore(mem)
	inst := testInstance("casa", 3)
	require.NoError(t, store.Save(ctx, inst.ID, inst.Seed()))
	before, _, _ := mem.Get(ctx, "casa")

	_, found, err := store.Update(ctx, inst, 2, model.DishPatch{})
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = store.Update(ctx, inst, 99, model.DishPatch{Price: model.Ptr(decimal.NewFromInt(1))})
	require.NoError(t, err)
	assert.False(t, found)

	after, _, _ := mem.Get(ctx, "casa")
	assert.Equal(t, before, after)
}

func TestRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewDishStore(kv.NewMemory())
	inst := testInstance("casa", 4)

	found, err := store.Remove(ctx, inst, 2)
	require.NoError(t, err)
	assert.True(t, found)
	once, _ := store.Load(ctx, inst)

	found, err = store.Remove(ctx, inst, 2)
	require.NoError(t, err)
	assert.False(t, found)
	twice, _ := store.Load(ctx, inst)

	requireSameDishes(t, once, twice)
	assert.Len(t, twice, 3)
}

func TestRemoveLastDishRestoresSeedOnNextLoad(t *testing.T) {
	ctx := context.Background()
	store := NewDishStore(kv.NewMemory())
	inst := testInstance("casa", 1)

	_, err := store.Remove(ctx, inst, 1)
	require.NoError(t, err)
	dishes, outcome := store.Load(ctx, inst)
	assert.Equal(t, LoadEmptyFallback, outcome)
	assert.Len(t, dishes, 1)
}

func TestReorderIsPermissive(t *testing.T) {
	ctx := context.Background()
	store := NewDishStore(kv.NewMemory())
	inst := testInstance("casa", 3)
	seed := inst.Seed()

	require.NoError(t, store.Reorder(ctx, inst, []model.Dish{seed[2], seed[0]}))
	dishes, _ := store.Load(ctx, inst)
	require.Len(t, dishes, 2)
	assert.Equal(t, 3, dishes[0].ID)
	assert.Equal(t, 1, dishes[1].ID)
}

func TestWritesReportUnavailableStorage(t *testing.T) {
	ctx := context.Background()
	store := NewDishStore(kv.Disabled{})
	inst := testInstance("casa", 2)

	_, err := store.Add(ctx, inst, model.DishPatch{NameES: model.Ptr("x")})
	assert.ErrorIs(t, err, kv.ErrUnavailable)
	_, _, err = store.Update(ctx, inst, 1, model.DishPatch{Active: model.Ptr(false)})
	assert.ErrorIs(t, err, kv.ErrUnavailable)
}
