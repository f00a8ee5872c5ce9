package model

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// MasterID identifies the protected master instance.  It can never be
// deleted and its seed always comes from the embedded data below.
const MasterID = "bolina_viejo_v1"

//go:embed data/master.yaml
var masterYAML []byte

type seedFile struct {
	ID     string     `yaml:"id"`
	Name   string     `yaml:"name"`
	Slogan string     `yaml:"slogan"`
	Theme  *Theme     `yaml:"theme"`
	Dishes []seedDish `yaml:"dishes"`
}

type seedDish struct {
	ID         int               `yaml:"id"`
	Price      string            `yaml:"price"`
	Type       string            `yaml:"type"`
	Ration     bool              `yaml:"ration"`
	Categories string            `yaml:"categories"`
	Allergens  []string          `yaml:"allergens"`
	Names      map[string]string `yaml:"names"`
}

var (
	masterOnce sync.Once
	master     Instance
)

// Master returns the master instance with a fresh copy of its seed.
func Master() Instance {
	masterOnce.Do(func() {
		inst, err := ParseSeed(masterYAML)
		if err != nil {
			panic(fmt.Sprintf("model: embedded master seed: %v", err))
		}
		master = inst
	})
	m := master
	m.InitialDishes = master.Seed()
	if master.Theme != nil {
		t := *master.Theme
		m.Theme = &t
	}
	return m
}

// ParseSeed decodes an instance definition in the seed YAML format.  Seed
// dishes are active, outside the daily menu and listed in the carta unless
// the file says otherwise.
func ParseSeed(b []byte) (Instance, error) {
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Instance{}, fmt.Errorf("parse seed: %w", err)
	}
	if f.ID == "" {
		return Instance{}, fmt.Errorf("parse seed: missing id")
	}
	inst := Instance{ID: f.ID, Name: f.Name, Slogan: f.Slogan, Theme: f.Theme}
	inst.InitialDishes = make([]Dish, 0, len(f.Dishes))
	for _, sd := range f.Dishes {
		price, err := decimal.NewFromString(sd.Price)
		if err != nil {
			return Instance{}, fmt.Errorf("parse seed: dish %d price %q: %w", sd.ID, sd.Price, err)
		}
		cats := ParseCategories(sd.Categories)
		if len(cats) == 0 {
			cats = Categories{CategoryCarta}
		}
		d := Dish{
			ID:         sd.ID,
			Price:      price,
			Categories: cats,
			Type:       DishType(sd.Type),
			Active:     true,
			Role:       RoleNone,
			Ration:     sd.Ration,
			Allergens:  Allergens{},
		}
		for _, a := range sd.Allergens {
			d.Allergens = d.Allergens.With(Allergen(a))
		}
		for code, name := range sd.Names {
			if lang, ok := ParseLanguage(code); ok {
				d.SetName(lang, name)
			}
		}
		inst.InitialDishes = append(inst.InitialDishes, d)
	}
	return inst, nil
}
