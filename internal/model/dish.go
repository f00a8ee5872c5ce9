package model

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Persisted dish collections carry Precio as a JSON number.
	decimal.MarshalJSONWithoutQuotes = true
}

// Language is one of the six fixed menu languages.  Spanish is the
// authoritative language; every other name may be empty and falls back to it.
type Language string

const (
	LangES Language = "ES"
	LangEU Language = "EU"
	LangEN Language = "EN"
	LangFR Language = "FR"
	LangDE Language = "DE"
	LangIT Language = "IT"
)

// Languages lists the supported languages, Spanish first.
var Languages = []Language{LangES, LangEU, LangEN, LangFR, LangDE, LangIT}

// ParseLanguage maps a case-insensitive code to a Language.
func ParseLanguage(s string) (Language, bool) {
	l := Language(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Languages {
		if l == known {
			return l, true
		}
	}
	return "", false
}

// DishType tags a dish with the carta section it belongs to.  Values outside
// the enumeration are tolerated and grouped under OTROS by the views.
type DishType string

const (
	TypeStarter DishType = "ENTRANTE"
	TypeSalad   DishType = "ENSALADA"
	TypeRice    DishType = "ARROZ"
	TypeSeafood DishType = "MARISCO"
	TypeFish    DishType = "PESCADO"
	TypeMeat    DishType = "CARNE"
	TypeDessert DishType = "POSTRE"
)

// DishTypes is the display order of the carta sections.
var DishTypes = []DishType{TypeStarter, TypeSalad, TypeRice, TypeSeafood, TypeFish, TypeMeat, TypeDessert}

// Known reports whether t is part of the enumeration.
func (t DishType) Known() bool {
	for _, k := range DishTypes {
		if t == k {
			return true
		}
	}
	return false
}

// RationByDefault is the fallback for the "is a ration" flag when a dish
// does not state it: starters, salads, rice and seafood are shareable.
func (t DishType) RationByDefault() bool {
	switch t {
	case TypeStarter, TypeSalad, TypeRice, TypeSeafood:
		return true
	}
	return false
}

// MenuRole is the slot a dish occupies in the fixed daily menu.  RoleNone
// is serialised as JSON null.
type MenuRole string

const (
	RoleNone    MenuRole = ""
	RoleFirst   MenuRole = "PRIMERO"
	RoleSecond  MenuRole = "SEGUNDO"
	RoleDessert MenuRole = "POSTRE"
	RoleRation  MenuRole = "RACION"
)

// ParseMenuRole accepts the role names plus "NO"/"" for none.
func ParseMenuRole(s string) (MenuRole, bool) {
	switch r := MenuRole(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleFirst, RoleSecond, RoleDessert, RoleRation:
		return r, true
	case "", "NO", "NONE":
		return RoleNone, true
	}
	return RoleNone, false
}

func (r MenuRole) MarshalJSON() ([]byte, error) {
	if r == RoleNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

func (r *MenuRole) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = RoleNone
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r = MenuRole(s)
	return nil
}

// Dish is one menu item as persisted under the instance key.  The JSON
// names are the on-storage format and must not change.
type Dish struct {
	ID         int             `json:"ID_Plato"`   // unique within the instance, never reused while present
	Price      decimal.Decimal `json:"Precio"`     // 0 hides the price
	NameES     string          `json:"ES_Nombre"`  // authoritative name
	NameEU     string          `json:"EU_Nombre"`
	NameEN     string          `json:"EN_Nombre"`
	NameFR     string          `json:"FR_Nombre"`
	NameDE     string          `json:"DE_Nombre"`
	NameIT     string          `json:"IT_Nombre"`
	Categories Categories      `json:"Categoria"`  // "CARTA", "MENU,CARTA", ...
	Type       DishType        `json:"Tipo"`
	Active     bool            `json:"Activo_Dia"` // shown to customers today
	Role       MenuRole        `json:"Rol_Menu"`
	Ration     bool            `json:"Es_Racion"`
	Allergens  Allergens       `json:"Alergenos"`
}

// Name returns the dish name in lang, falling back to Spanish.
func (d Dish) Name(lang Language) string {
	var n string
	switch lang {
	case LangEU:
		n = d.NameEU
	case LangEN:
		n = d.NameEN
	case LangFR:
		n = d.NameFR
	case LangDE:
		n = d.NameDE
	case LangIT:
		n = d.NameIT
	}
	if strings.TrimSpace(n) == "" {
		return d.NameES
	}
	return n
}

// SetName stores name for lang.  Unknown languages are ignored.
func (d *Dish) SetName(lang Language, name string) {
	switch lang {
	case LangES:
		d.NameES = name
	case LangEU:
		d.NameEU = name
	case LangEN:
		d.NameEN = name
	case LangFR:
		d.NameFR = name
	case LangDE:
		d.NameDE = name
	case LangIT:
		d.NameIT = name
	}
}

// MaxDishID returns the largest id in dishes, 0 when empty.
func MaxDishID(dishes []Dish) int {
	max := 0
	for _, d := range dishes {
		if d.ID > max {
			max = d.ID
		}
	}
	return max
}

// CloneDishes copies the slice and the per-dish sets so callers can mutate
// the result without touching the source (seed data in particular).
func CloneDishes(in []Dish) []Dish {
	if in == nil {
		return nil
	}
	out := make([]Dish, len(in))
	for i, d := range in {
		d.Categories = append(Categories(nil), d.Categories...)
		if d.Allergens != nil {
			d.Allergens = append(Allergens{}, d.Allergens...)
		}
		out[i] = d
	}
	return out
}
