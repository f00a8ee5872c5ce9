package repository

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/jaswdr/faker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/menu-factory/internal/model"
)

func testInstance(id string, seed int) model.Instance {
	inst := model.Instance{ID: id, Name: "Test " + id, InitialDishes: []model.Dish{}}
	for i := 1; i <= seed; i++ {
		inst.InitialDishes = append(inst.InitialDishes, model.Dish{
			ID:         i,
			Price:      decimal.NewFromInt(int64(10 + i)),
			NameES:     fmt.Sprintf("Plato %d", i),
			Categories: model.Categories{model.CategoryCarta},
			Type:       model.TypeMeat,
			Active:     true,
			Allergens:  model.Allergens{},
		})
	}
	return inst
}

// randomDishes builds a collection where every optional field is set, so a
// save/load round trip must reproduce it exactly.
func randomDishes(fake faker.Faker, n int) []model.Dish {
	roles := []string{"", "PRIMERO", "SEGUNDO", "POSTRE", "RACION"}
	types := []string{"ENTRANTE", "ENSALADA", "ARROZ", "MARISCO", "PESCADO", "CARNE", "POSTRE", "BEBIDA"}
	out := make([]model.Dish, 0, n)
	id := 0
	for i := 0; i < n; i++ {
		id += fake.IntBetween(1, 3)
		d := model.Dish{
			ID:         id,
			Price:      decimal.NewFromFloat(fake.Float64(2, 0, 60)),
			Categories: model.ParseCategories(fake.RandomStringElement([]string{"CARTA", "MENU", "MENU,CARTA"})),
			Type:       model.DishType(fake.RandomStringElement(types)),
			Active:     fake.Bool(),
			Role:       model.MenuRole(fake.RandomStringElement(roles)),
			Ration:     fake.Bool(),
			Allergens:  model.Allergens{},
		}
		for _, lang := range model.Languages {
			d.SetName(lang, fake.Lorem().Word())
		}
		for _, a := range model.AllAllergens {
			if fake.IntBetween(0, 4) == 0 {
				d.Allergens = d.Allergens.With(a)
			}
		}
		out = append(out, d)
	}
	return out
}

// requireSameDishes compares through JSON so decimals with different
// internal exponents but equal values match.
func requireSameDishes(t *testing.T, want, got []model.Dish) {
	t.Helper()
	wb, err := json.Marshal(want)
	require.NoError(t, err)
	gb, err := json.Marshal(got)
	require.NoError(t, err)
	require.JSONEq(t, string(wb), string(gb))
}
