package model

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// DishPatch is a partial dish: every nil field is left untouched by Apply.
// It is the input of both add (unset fields get defaults) and update
// (shallow merge).  The JSON names mirror Dish.
type DishPatch struct {
	Price      *decimal.Decimal `json:"Precio,omitempty"`
	NameES     *string          `json:"ES_Nombre,omitempty"`
	NameEU     *string          `json:"EU_Nombre,omitempty"`
	NameEN     *string          `json:"EN_Nombre,omitempty"`
	NameFR     *string          `json:"FR_Nombre,omitempty"`
	NameDE     *string          `json:"DE_Nombre,omitempty"`
	NameIT     *string          `json:"IT_Nombre,omitempty"`
	Categories *Categories      `json:"Categoria,omitempty"`
	Type       *DishType        `json:"Tipo,omitempty"`
	Active     *bool            `json:"Activo_Dia,omitempty"`
	Role       *MenuRole        `json:"Rol_Menu,omitempty"`
	Ration     *bool            `json:"Es_Racion,omitempty"`
	Allergens  *Allergens       `json:"Alergenos,omitempty"`
}

// UnmarshalJSON treats an explicit "Rol_Menu": null as "clear the role",
// which a plain pointer field cannot express.
func (p *DishPatch) UnmarshalJSON(b []byte) error {
	type plain DishPatch
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if r, ok := raw["Rol_Menu"]; ok && string(r) == "null" {
		none := RoleNone
		v.Role = &none
	}
	*p = DishPatch(v)
	return nil
}

// ErrNegativePrice rejects a dish or menu price below zero.
var ErrNegativePrice = errors.New("price must not be negative")

// Validate checks the values a patch would write.
func (p DishPatch) Validate() error {
	if p.Price != nil && p.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p DishPatch) IsEmpty() bool {
	return p == DishPatch{}
}

// Apply returns d with every set field of p copied over it.
func (p DishPatch) Apply(d Dish) Dish {
	if p.Price != nil {
		d.Price = *p.Price
	}
	if p.NameES != nil {
		d.NameES = *p.NameES
	}
	if p.NameEU != nil {
		d.NameEU = *p.NameEU
	}
	if p.NameEN != nil {
		d.NameEN = *p.NameEN
	}
	if p.NameFR != nil {
		d.NameFR = *p.NameFR
	}
	if p.NameDE != nil {
		d.NameDE = *p.NameDE
	}
	if p.NameIT != nil {
		d.NameIT = *p.NameIT
	}
	if p.Categories != nil {
		d.Categories = append(Categories(nil), (*p.Categories)...)
	}
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.Active != nil {
		d.Active = *p.Active
	}
	if p.Role != nil {
		d.Role = *p.Role
	}
	if p.Ration != nil {
		d.Ration = *p.Ration
	}
	if p.Allergens != nil {
		d.Allergens = append(Allergens{}, (*p.Allergens)...)
	}
	return d
}

// SetName sets the patch field for lang.
func (p *DishPatch) SetName(lang Language, name string) {
	n := name
	switch lang {
	case LangES:
		p.NameES = &n
	case LangEU:
		p.NameEU = &n
	case LangEN:
		p.NameEN = &n
	case LangFR:
		p.NameFR = &n
	case LangDE:
		p.NameDE = &n
	case LangIT:
		p.NameIT = &n
	}
}

// Ptr is a small helper for building patches in code and tests.
func Ptr[T any](v T) *T { return &v }
